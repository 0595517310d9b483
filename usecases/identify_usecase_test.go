package usecases

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/checkmarble/consent-ledger/mocks"
	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
	"github.com/checkmarble/consent-ledger/repositories/memory"
	"github.com/checkmarble/consent-ledger/utils"
)

type IdentifyUsecaseTestSuite struct {
	suite.Suite
	ctx      context.Context
	storage  *memory.Storage
	usecases Usecases
}

func (suite *IdentifyUsecaseTestSuite) SetupTest() {
	now := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	suite.storage = memory.NewStorage()
	suite.usecases = NewUsecases(suite.storage, WithClock(func() time.Time { return now }))
	suite.ctx = utils.StoreClientInfoInContext(context.Background(), models.ClientInfo{
		IpAddress: "198.51.100.4",
		UserAgent: "curl/8.0",
	})
}

func (suite *IdentifyUsecaseTestSuite) count(model models.Model, where models.Filter) int {
	rows, err := suite.storage.FindMany(suite.ctx, model, repositories.Query{Where: where})
	suite.Require().NoError(err)
	return len(rows)
}

func (suite *IdentifyUsecaseTestSuite) postAnonymousConsent() models.PostConsentResult {
	result, err := suite.usecases.NewConsentUsecase().PostConsent(suite.ctx, models.PostConsentInput{
		Type:        models.PolicyTypeCookieBanner,
		Domain:      "example.com",
		Preferences: map[string]bool{"analytics": true},
	})
	suite.Require().NoError(err)
	return result
}

func (suite *IdentifyUsecaseTestSuite) TestIdentifyUser_links_external_id() {
	posted := suite.postAnonymousConsent()

	err := suite.usecases.NewIdentifyUsecase().IdentifyUser(suite.ctx, models.IdentifyUserInput{
		ConsentId:  posted.Id,
		ExternalId: "user-1",
	})
	suite.Require().NoError(err)

	subject, err := suite.storage.FindFirst(suite.ctx, models.ModelSubject,
		repositories.Query{Where: models.Eq("id", posted.SubjectId)})
	suite.Require().NoError(err)
	suite.Require().NotNil(subject)
	suite.Equal("user-1", subject.String("external_id"))
	suite.Equal(models.IdentityProviderExternal, subject.String("identity_provider"))
	suite.True(subject.Bool("is_identified"))

	logs, err := suite.storage.FindMany(suite.ctx, models.ModelAuditLog, repositories.Query{
		Where: models.Eq("action_type", models.ActionIdentifyUser),
	})
	suite.Require().NoError(err)
	suite.Require().Len(logs, 1)
	suite.Equal(posted.Id, logs[0].String("entity_id"))
	suite.Equal(posted.SubjectId, logs[0].String("subject_id"))
	suite.Equal("198.51.100.4", logs[0].String("ip_address"))
	suite.Equal(map[string]any{
		"externalId":       "user-1",
		"identityProvider": models.IdentityProviderExternal,
	}, logs[0].Map("metadata"))
}

func (suite *IdentifyUsecaseTestSuite) TestIdentifyUser_merges_into_identified_subject() {
	first := suite.postAnonymousConsent()
	second := suite.postAnonymousConsent()
	suite.Require().NotEqual(first.SubjectId, second.SubjectId)
	usecase := suite.usecases.NewIdentifyUsecase()

	suite.Require().NoError(usecase.IdentifyUser(suite.ctx, models.IdentifyUserInput{
		ConsentId: first.Id, ExternalId: "user-1", IdentityProvider: "auth0",
	}))
	suite.Require().NoError(usecase.IdentifyUser(suite.ctx, models.IdentifyUserInput{
		ConsentId: second.Id, ExternalId: "user-1", IdentityProvider: "auth0",
	}))

	suite.Equal(1, suite.count(models.ModelSubject, models.Filter{}))
	suite.Equal(0, suite.count(models.ModelSubject, models.Eq("id", second.SubjectId)))
	suite.Equal(2, suite.count(models.ModelConsent, models.Eq("subject_id", first.SubjectId)))
	suite.Equal(2, suite.count(models.ModelConsentRecord, models.Eq("subject_id", first.SubjectId)))
	suite.Equal(0, suite.count(models.ModelAuditLog, models.Eq("subject_id", second.SubjectId)))
	suite.Equal(4, suite.count(models.ModelAuditLog, models.Eq("subject_id", first.SubjectId)))

	merge, err := suite.storage.FindFirst(suite.ctx, models.ModelAuditLog, repositories.Query{
		Where: models.And(
			models.Eq("action_type", models.ActionIdentifyUser),
			models.Eq("entity_id", second.Id),
		),
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(merge)
	suite.Equal(second.SubjectId, merge.Map("metadata")["mergedFrom"])
	suite.Equal("auth0", merge.Map("metadata")["identityProvider"])
}

func (suite *IdentifyUsecaseTestSuite) TestIdentifyUser_same_subject_twice() {
	posted := suite.postAnonymousConsent()
	usecase := suite.usecases.NewIdentifyUsecase()
	input := models.IdentifyUserInput{ConsentId: posted.Id, ExternalId: "user-1"}

	suite.Require().NoError(usecase.IdentifyUser(suite.ctx, input))
	suite.Require().NoError(usecase.IdentifyUser(suite.ctx, input))

	suite.Equal(1, suite.count(models.ModelSubject, models.Filter{}))
	suite.Equal(1, suite.count(models.ModelConsent, models.Eq("subject_id", posted.SubjectId)))
	suite.Equal(2, suite.count(models.ModelAuditLog, models.Eq("action_type", models.ActionIdentifyUser)))
}

func (suite *IdentifyUsecaseTestSuite) TestIdentifyUser_consent_not_found() {
	err := suite.usecases.NewIdentifyUsecase().IdentifyUser(suite.ctx, models.IdentifyUserInput{
		ConsentId:  "cns_missing",
		ExternalId: "user-1",
	})

	ledgerErr, ok := models.AsLedgerError(err)
	suite.Require().True(ok)
	suite.Equal(models.CodeConsentNotFound, ledgerErr.Code)
	suite.Equal(http.StatusNotFound, ledgerErr.Status)
}

func (suite *IdentifyUsecaseTestSuite) TestIdentifyUser_counts_metrics() {
	linked := utils.MetricSubjectIdentified.WithLabelValues("linked")
	merged := utils.MetricSubjectIdentified.WithLabelValues("merged")
	linkedBefore, mergedBefore := testutil.ToFloat64(linked), testutil.ToFloat64(merged)

	first := suite.postAnonymousConsent()
	second := suite.postAnonymousConsent()
	usecase := suite.usecases.NewIdentifyUsecase()
	suite.Require().NoError(usecase.IdentifyUser(suite.ctx, models.IdentifyUserInput{
		ConsentId: first.Id, ExternalId: "user-1",
	}))
	suite.Require().NoError(usecase.IdentifyUser(suite.ctx, models.IdentifyUserInput{
		ConsentId: second.Id, ExternalId: "user-1",
	}))

	suite.Equal(linkedBefore+1, testutil.ToFloat64(linked))
	suite.Equal(mergedBefore+1, testutil.ToFloat64(merged))
}

func TestIdentifyUsecase(t *testing.T) {
	suite.Run(t, new(IdentifyUsecaseTestSuite))
}

func identifyWithMocks(storage *mocks.Storage) IdentifyUsecase {
	usecases := NewUsecases(storage)
	return usecases.NewIdentifyUsecase()
}

func consentRow(id, subjectId string) repositories.Row {
	return repositories.Row{
		"id":          id,
		"subject_id":  subjectId,
		"domain_id":   "dom_1",
		"purpose_ids": []string{},
		"status":      "active",
		"given_at":    time.Now(),
		"is_active":   true,
	}
}

func TestIdentifyUser_without_other_subject_does_not_move_rows(t *testing.T) {
	ctx := context.Background()
	tx := new(mocks.Storage)
	storage := &mocks.Storage{TxMock: tx}

	storage.On("FindFirst", mock.Anything, models.ModelConsent, mock.Anything).
		Return(consentRow("cns_1", "sub_1"), nil)
	storage.On("Transaction", mock.Anything, mock.Anything).Return(nil)
	tx.On("FindFirst", mock.Anything, models.ModelSubject, mock.Anything).Return(nil, nil)
	tx.On("UpdateMany", mock.Anything, models.ModelSubject, models.Eq("id", "sub_1"), mock.Anything).
		Return(int64(1), nil)
	tx.On("FindFirst", mock.Anything, models.ModelAuditLog, mock.Anything).Return(nil, nil)
	tx.On("Create", mock.Anything, models.ModelAuditLog, mock.Anything).
		Return(repositories.Row{"id": "log_1"}, nil)

	err := identifyWithMocks(storage).IdentifyUser(ctx, models.IdentifyUserInput{
		ConsentId:  "cns_1",
		ExternalId: "user-1",
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	storage.AssertExpectations(t)
	tx.AssertExpectations(t)
	tx.AssertNotCalled(t, "UpdateMany", mock.Anything, models.ModelConsent, mock.Anything, mock.Anything)
	tx.AssertNotCalled(t, "DeleteMany", mock.Anything, models.ModelSubject, mock.Anything)
}

func TestIdentifyUser_storage_failure_is_identification_failed(t *testing.T) {
	ctx := context.Background()
	tx := new(mocks.Storage)
	storage := &mocks.Storage{TxMock: tx}

	storage.On("FindFirst", mock.Anything, models.ModelConsent, mock.Anything).
		Return(consentRow("cns_1", "sub_1"), nil)
	storage.On("Transaction", mock.Anything, mock.Anything).Return(nil)
	tx.On("FindFirst", mock.Anything, models.ModelSubject, mock.Anything).
		Return(repositories.Row{"id": "sub_2", "external_id": "user-1"}, nil)
	tx.On("UpdateMany", mock.Anything, models.ModelConsent, mock.Anything, mock.Anything).
		Return(int64(0), errors.New("connection reset"))

	err := identifyWithMocks(storage).IdentifyUser(ctx, models.IdentifyUserInput{
		ConsentId:  "cns_1",
		ExternalId: "user-1",
	})

	ledgerErr, ok := models.AsLedgerError(err)
	if !ok {
		t.Fatalf("expected a ledger error, got %v", err)
	}
	if ledgerErr.Code != models.CodeIdentificationFailed {
		t.Errorf("expected %s, got %s", models.CodeIdentificationFailed, ledgerErr.Code)
	}
	tx.AssertNotCalled(t, "DeleteMany", mock.Anything, models.ModelSubject, mock.Anything)
}
