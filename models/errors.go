package models

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Base errors, related to default API status codes
var (
	// BadParameterError is rendered with the http status code 400
	BadParameterError = errors.New("bad parameter")

	// NotFoundError is rendered with the http status code 404
	NotFoundError = errors.New("not found")

	// ConflictError is rendered with the http status code 409
	ConflictError = errors.New("duplicate value")

	// TimeoutError is rendered with the http status code 408
	TimeoutError = errors.New("request timeout")

	// UnavailableError is rendered with the http status code 503
	UnavailableError = errors.New("service unavailable")

	// InternalError is rendered with the http status code 500
	InternalError = errors.New("internal error")
)

// DB related errors
var (
	ErrIgnoreRollBackError = errors.New("ignore rollback error")
)

type ErrorCode string

const (
	CodeSubjectNotFound             ErrorCode = "SUBJECT_NOT_FOUND"
	CodeConsentNotFound             ErrorCode = "CONSENT_NOT_FOUND"
	CodeDomainNotFound              ErrorCode = "DOMAIN_NOT_FOUND"
	CodePolicyNotFound              ErrorCode = "POLICY_NOT_FOUND"
	CodePolicyInactive              ErrorCode = "POLICY_INACTIVE"
	CodePurposesNotFound            ErrorCode = "PURPOSES_NOT_FOUND"
	CodePreferencesRequired         ErrorCode = "COOKIE_BANNER_PREFERENCES_REQUIRED"
	CodeSubjectCreationFailed       ErrorCode = "SUBJECT_CREATION_FAILED"
	CodeDomainCreationFailed        ErrorCode = "DOMAIN_CREATION_FAILED"
	CodePolicyCreationFailed        ErrorCode = "POLICY_CREATION_FAILED"
	CodePurposeCreationFailed       ErrorCode = "PURPOSE_CREATION_FAILED"
	CodeConsentCreationFailed       ErrorCode = "CONSENT_CREATION_FAILED"
	CodeConsentRecordCreationFailed ErrorCode = "CONSENT_RECORD_CREATION_FAILED"
	CodeAuditLogCreationFailed      ErrorCode = "AUDIT_LOG_CREATION_FAILED"
	CodeIdGenerationExhausted       ErrorCode = "ID_GENERATION_EXHAUSTED"
	CodeIdentificationFailed        ErrorCode = "IDENTIFICATION_FAILED"
	CodeRequestTimeout              ErrorCode = "REQUEST_TIMEOUT"
	CodeInternalServerError         ErrorCode = "INTERNAL_SERVER_ERROR"
)

// LedgerError is the typed error raised by registries and handlers. It carries a stable
// code, the http-like status the transport layer should render and diagnostic data.
// It unwraps to one of the base errors above, so errors.Is(err, NotFoundError) holds for
// every *_NOT_FOUND code.
type LedgerError struct {
	Code    ErrorCode
	Status  int
	Message string
	Data    map[string]any

	kind  error
	cause error
}

func (e *LedgerError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LedgerError) Unwrap() error {
	return e.kind
}

// Underlying returns the error which triggered this one, if any.
func (e *LedgerError) Underlying() error {
	return e.cause
}

func newLedgerError(kind error, code ErrorCode, status int, message string, data map[string]any) *LedgerError {
	return &LedgerError{
		Code:    code,
		Status:  status,
		Message: message,
		Data:    data,
		kind:    kind,
	}
}

// WithCause returns a copy of the error recording cause as the underlying error.
func (e *LedgerError) WithCause(cause error) *LedgerError {
	c := *e
	c.cause = cause
	return &c
}

// AsLedgerError extracts the typed error from the chain, if any.
func AsLedgerError(err error) (*LedgerError, bool) {
	var ledgerErr *LedgerError
	if errors.As(err, &ledgerErr) {
		return ledgerErr, true
	}
	return nil, false
}

// HasCode reports if err is, or wraps, a ledger error with the given code.
func HasCode(err error, code ErrorCode) bool {
	ledgerErr, ok := AsLedgerError(err)
	return ok && ledgerErr.Code == code
}

// IsSystemic reports errors which denote a failure of the ledger itself rather than of
// the request.
func IsSystemic(err error) bool {
	return HasCode(err, CodeIdGenerationExhausted)
}

func ErrSubjectNotFound(data map[string]any) *LedgerError {
	return newLedgerError(NotFoundError, CodeSubjectNotFound, http.StatusNotFound,
		"The specified subject could not be found. Please verify the subject identifiers and try again.", data)
}

func ErrConsentNotFound(consentId string) *LedgerError {
	return newLedgerError(NotFoundError, CodeConsentNotFound, http.StatusNotFound,
		"consent not found", map[string]any{"consentId": consentId})
}

func ErrDomainNotFound(domain string) *LedgerError {
	return newLedgerError(NotFoundError, CodeDomainNotFound, http.StatusNotFound,
		"domain not found", map[string]any{"domain": domain})
}

func ErrPolicyNotFound(policyId string, policyType PolicyType) *LedgerError {
	return newLedgerError(NotFoundError, CodePolicyNotFound, http.StatusNotFound,
		"policy not found", map[string]any{"policyId": policyId, "type": string(policyType)})
}

func ErrPolicyInactive(policyId string, policyType PolicyType) *LedgerError {
	return newLedgerError(BadParameterError, CodePolicyInactive, http.StatusBadRequest,
		"policy is not active", map[string]any{"policyId": policyId, "type": string(policyType)})
}

func ErrPurposesNotFound(preferences []string, foundPurposes []string) *LedgerError {
	return newLedgerError(NotFoundError, CodePurposesNotFound, http.StatusNotFound,
		"some consent purposes could not be found",
		map[string]any{"preferences": preferences, "foundPurposes": foundPurposes})
}

func ErrPreferencesRequired(policyType PolicyType) *LedgerError {
	return newLedgerError(BadParameterError, CodePreferencesRequired, http.StatusBadRequest,
		"preferences are required for this consent type", map[string]any{"type": string(policyType)})
}

func ErrCreationFailed(model Model, data map[string]any) *LedgerError {
	code := CodeInternalServerError
	status := http.StatusInternalServerError
	kind := InternalError
	switch model {
	case ModelSubject:
		code = CodeSubjectCreationFailed
	case ModelDomain:
		code = CodeDomainCreationFailed
		status = http.StatusServiceUnavailable
		kind = UnavailableError
	case ModelConsentPolicy:
		code = CodePolicyCreationFailed
	case ModelConsentPurpose:
		code = CodePurposeCreationFailed
	case ModelConsent:
		code = CodeConsentCreationFailed
	case ModelConsentRecord:
		code = CodeConsentRecordCreationFailed
	case ModelAuditLog:
		code = CodeAuditLogCreationFailed
	}
	return newLedgerError(kind, code, status, fmt.Sprintf("failed to create %s", model), data)
}

func ErrIdGenerationExhausted(model Model, attempts int) *LedgerError {
	return newLedgerError(InternalError, CodeIdGenerationExhausted, http.StatusInternalServerError,
		fmt.Sprintf("failed to generate unique id for %s after %d attempts", model, attempts),
		map[string]any{"model": string(model), "attempts": attempts})
}

func ErrIdentificationFailed(consentId string, cause error) *LedgerError {
	return newLedgerError(InternalError, CodeIdentificationFailed, http.StatusInternalServerError,
		"failed to identify user", map[string]any{"consentId": consentId}).WithCause(cause)
}

// ErrRequestTimeout is raised when the request context is done before the handler ends.
func ErrRequestTimeout(cause error) *LedgerError {
	return newLedgerError(TimeoutError, CodeRequestTimeout, http.StatusRequestTimeout,
		"request timeout", nil).WithCause(cause)
}

// ErrInternal hides cause from the message, which is rendered to clients.
func ErrInternal(cause error) *LedgerError {
	return newLedgerError(InternalError, CodeInternalServerError, http.StatusInternalServerError,
		"an unexpected error occurred", nil).WithCause(cause)
}
