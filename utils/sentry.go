package utils

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"

	"github.com/checkmarble/consent-ledger/models"
)

// LogAndReportSentryError logs err and sends it to the hub of ctx, or the global hub.
// Ledger errors are tagged with their code; systemic ones are reported as fatal.
func LogAndReportSentryError(ctx context.Context, err error) {
	logger := LoggerFromContext(ctx)
	logger.ErrorContext(ctx, fmt.Sprintf("%+v", err))

	// context deadlines and cancellations are handled where they originate
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		logger.DebugContext(ctx, fmt.Sprintf("Deadline exceeded or context canceled: %v", err))
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		if ledgerErr, ok := models.AsLedgerError(err); ok {
			scope.SetTag("error_code", string(ledgerErr.Code))
			if len(ledgerErr.Data) > 0 {
				scope.SetContext("ledger", sentry.Context(ledgerErr.Data))
			}
		}
		if models.IsSystemic(err) {
			scope.SetLevel(sentry.LevelFatal)
		}
		hub.CaptureException(err)
	})
}
