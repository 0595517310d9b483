package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/checkmarble/consent-ledger/dto"
	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/pure_utils"
	"github.com/checkmarble/consent-ledger/utils"
)

type errorResponse struct {
	err    error
	status int
	body   dto.APIErrorResponse
}

func newErrorResponse() errorResponse {
	return errorResponse{
		status: http.StatusInternalServerError,
		body: dto.APIErrorResponse{Error: dto.APIError{
			Code:    dto.ErrorCodeInternal,
			Message: "an unexpected error occurred",
		}},
	}
}

// withError maps err to the status and body rendered to the client. Only typed ledger
// errors and validation errors expose their message.
func (resp errorResponse) withError(err error) errorResponse {
	resp.err = err

	var validationErrs validator.ValidationErrors
	var unmarshalErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	ledgerErr, isLedgerErr := models.AsLedgerError(err)

	switch {
	case isLedgerErr:
		resp.status = ledgerErr.Status
		resp.body.Error.Code = string(ledgerErr.Code)
		resp.body.Error.Message = ledgerErr.Message
		resp.body.Error.Data = ledgerErr.Data

	case errors.As(err, &validationErrs):
		resp.status = http.StatusBadRequest
		resp.body.Error.Code = dto.ErrorCodeInvalidRequest
		resp.body.Error.Message = "invalid request payload"
		resp.body.Error.Messages = pure_utils.Map(validationErrs, AdaptFieldValidationError)

	// json: cannot unmarshal string into Go struct field .preferences of type map
	case errors.As(err, &unmarshalErr):
		resp.status = http.StatusBadRequest
		resp.body.Error.Code = dto.ErrorCodeInvalidRequest
		resp.body.Error.Message = "invalid request payload"
		msg := fmt.Sprintf("expected type %s field, got type %s", unmarshalErr.Type.String(), unmarshalErr.Value)
		if unmarshalErr.Field != "" {
			msg = fmt.Sprintf("field `%s` expected type %s, got type %s",
				unmarshalErr.Field, unmarshalErr.Type.String(), unmarshalErr.Value)
		}
		resp.body.Error.Messages = []string{msg}

	case errors.As(err, &syntaxErr),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, models.BadParameterError):
		resp.status = http.StatusBadRequest
		resp.body.Error.Code = dto.ErrorCodeInvalidRequest
		resp.body.Error.Message = "invalid request payload"

	case errors.Is(err, models.UnavailableError):
		resp.status = http.StatusServiceUnavailable
		resp.body.Error.Code = dto.ErrorCodeUnavailable
		resp.body.Error.Message = "service unavailable"

	case errors.Is(err, context.DeadlineExceeded):
		resp.status = http.StatusRequestTimeout
		resp.body.Error.Code = dto.ErrorCodeRequestTimeout
		resp.body.Error.Message = "request timeout"
	}

	return resp
}

func (resp errorResponse) serve(c *gin.Context) {
	if resp.status >= http.StatusInternalServerError {
		utils.LogAndReportSentryError(c.Request.Context(), resp.err)
	}
	if resp.err != nil {
		_ = c.Error(resp.err)
	}
	c.JSON(resp.status, resp.body)
}

// presentError renders err and reports whether there was one.
func presentError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	newErrorResponse().withError(err).serve(c)
	return true
}
