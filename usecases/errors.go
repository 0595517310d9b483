package usecases

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/utils"
)

// boundaryError logs a handler failure and returns it as a typed error. A done context
// yields REQUEST_TIMEOUT.
func boundaryError(ctx context.Context, handler string, err error, wrap func(error) *models.LedgerError) error {
	ledgerErr, ok := models.AsLedgerError(err)
	switch {
	case ok:
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		ledgerErr = models.ErrRequestTimeout(err)
		err = ledgerErr
	default:
		ledgerErr = wrap(err)
		err = ledgerErr
	}

	logger := utils.LoggerFromContext(ctx)
	if models.IsSystemic(err) {
		logger.ErrorContext(ctx, "Systemic failure in "+handler+" handler",
			"error", err.Error(),
			"code", string(ledgerErr.Code),
			"systemic", true)
	} else {
		logger.ErrorContext(ctx, "Error in "+handler+" handler", "error", err.Error())
	}

	utils.MetricHandlerError.
		With(prometheus.Labels{"handler": handler, "code": string(ledgerErr.Code)}).
		Inc()
	return err
}
