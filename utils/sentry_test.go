package utils

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkmarble/consent-ledger/models"
)

func sentryContext(t *testing.T) (context.Context, *[]*sentry.Event) {
	t.Helper()
	events := &[]*sentry.Event{}
	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			*events = append(*events, event)
			return nil
		},
	})
	require.NoError(t, err)
	hub := sentry.NewHub(client, sentry.NewScope())
	return sentry.SetHubOnContext(context.Background(), hub), events
}

func TestLogAndReportSentryError(t *testing.T) {
	t.Run("ledger errors are tagged", func(t *testing.T) {
		ctx, events := sentryContext(t)

		LogAndReportSentryError(ctx, models.ErrCreationFailed(models.ModelConsent, map[string]any{"subjectId": "sub_1"}))

		require.Len(t, *events, 1)
		event := (*events)[0]
		assert.Equal(t, "CONSENT_CREATION_FAILED", event.Tags["error_code"])
		assert.Equal(t, "sub_1", event.Contexts["ledger"]["subjectId"])
		assert.NotEqual(t, sentry.LevelFatal, event.Level)
	})

	t.Run("systemic errors are fatal", func(t *testing.T) {
		ctx, events := sentryContext(t)

		LogAndReportSentryError(ctx, models.ErrIdGenerationExhausted(models.ModelSubject, 10))

		require.Len(t, *events, 1)
		assert.Equal(t, sentry.LevelFatal, (*events)[0].Level)
		assert.Equal(t, "ID_GENERATION_EXHAUSTED", (*events)[0].Tags["error_code"])
	})

	t.Run("done contexts are not reported", func(t *testing.T) {
		ctx, events := sentryContext(t)

		LogAndReportSentryError(ctx, errors.Wrap(context.Canceled, "error reading subject"))

		assert.Empty(t, *events)
	})
}
