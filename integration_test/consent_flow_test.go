package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkmarble/consent-ledger/dto"
)

func request(t *testing.T, method, path string, body any, target any) int {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(method, testServer.URL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "198.51.100.23")
	req.Header.Set("User-Agent", "integration-test")

	resp, err := testServer.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if target != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
	}
	return resp.StatusCode
}

func countRows(t *testing.T, query string, args ...any) int {
	t.Helper()
	var count int
	require.NoError(t, testDbPool.QueryRow(context.Background(), query, args...).Scan(&count))
	return count
}

func postCookieBanner(t *testing.T, domain string, preferences map[string]bool) dto.APIPostConsentResponse {
	t.Helper()
	var response dto.APIPostConsentResponse
	status := request(t, http.MethodPost, "/v1/consent", map[string]any{
		"type":        "cookie_banner",
		"domain":      domain,
		"preferences": preferences,
		"metadata":    map[string]any{"banner": "v2"},
	}, &response)
	require.Equal(t, http.StatusOK, status)
	return response
}

func TestConsentFlow(t *testing.T) {
	domain := "flow.example.com"

	first := postCookieBanner(t, domain, map[string]bool{"analytics": true, "marketing": false})
	assert.NotEmpty(t, first.Id)
	assert.Equal(t, 1, countRows(t, "SELECT count(*) FROM consent_records WHERE consent_id = $1", first.Id))
	assert.Equal(t, 1, countRows(t,
		"SELECT count(*) FROM audit_logs WHERE entity_id = $1 AND action_type = 'consent_given'", first.Id))

	var identified dto.APIIdentifyUserResponse
	status := request(t, http.MethodPatch, "/v1/consent/identify", map[string]any{
		"consentId":  first.Id,
		"externalId": "flow-user",
	}, &identified)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, identified.Success)

	// a second anonymous visit from the same user, identified afterwards
	second := postCookieBanner(t, domain, map[string]bool{"analytics": true, "marketing": true})
	require.NotEqual(t, first.SubjectId, second.SubjectId)

	status = request(t, http.MethodPatch, "/v1/consent/identify", map[string]any{
		"consentId":  second.Id,
		"externalId": "flow-user",
	}, &identified)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 0, countRows(t, "SELECT count(*) FROM subjects WHERE id = $1", second.SubjectId))
	assert.Equal(t, 2, countRows(t, "SELECT count(*) FROM consents WHERE subject_id = $1", first.SubjectId))

	var verified dto.APIVerifyConsentResponse
	status = request(t, http.MethodPost, "/v1/consent/verify", map[string]any{
		"type":              "cookie_banner",
		"externalSubjectId": "flow-user",
		"domain":            domain,
		"preferences":       []string{"analytics", "marketing"},
	}, &verified)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, verified.IsValid)
	require.NotNil(t, verified.Consent)
	assert.Equal(t, second.Id, verified.Consent.Id)
	assert.Equal(t, first.SubjectId, verified.Consent.SubjectId)
	assert.Equal(t, "198.51.100.23", verified.Consent.IpAddress.String)
}

func TestVerifyConsent_unknown_domain(t *testing.T) {
	var body dto.APIErrorResponse
	status := request(t, http.MethodPost, "/v1/consent/verify", map[string]any{
		"type":        "cookie_banner",
		"subjectId":   "sub_missing",
		"domain":      "never-seen.example.com",
		"preferences": []string{"analytics"},
	}, &body)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "DOMAIN_NOT_FOUND", body.Error.Code)
}

func TestGetStatus(t *testing.T) {
	var body dto.APIStatus
	status := request(t, http.MethodGet, "/v1/status", nil, &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "integration", body.Version)
	assert.Equal(t, "198.51.100.23", body.Client.Ip.String)
}
