package dto

type APIErrorResponse struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"`
	Messages []string       `json:"messages,omitempty"`
}

// ErrorCode values of errors raised by the transport layer itself.
const (
	ErrorCodeInvalidRequest = "INVALID_REQUEST"
	ErrorCodeNotFound       = "NOT_FOUND"
	ErrorCodeRequestTimeout = "REQUEST_TIMEOUT"
	ErrorCodeUnavailable    = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal       = "INTERNAL_SERVER_ERROR"
)
