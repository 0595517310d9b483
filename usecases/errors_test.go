package usecases

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories/memory"
	"github.com/checkmarble/consent-ledger/utils"
)

func loggingContext() (context.Context, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, nil))
	return utils.StoreLoggerInContext(context.Background(), logger), buf
}

func TestBoundaryError(t *testing.T) {
	t.Run("typed errors pass through", func(t *testing.T) {
		ctx, _ := loggingContext()
		typed := models.ErrDomainNotFound("example.com")

		err := boundaryError(ctx, "verify-consent", errors.Wrap(typed, "wrapped"), models.ErrInternal)

		assert.True(t, models.HasCode(err, models.CodeDomainNotFound))
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		ctx, _ := loggingContext()

		err := boundaryError(ctx, "post-consent", errors.New("connection reset"), models.ErrInternal)

		ledgerErr, ok := models.AsLedgerError(err)
		require.True(t, ok)
		assert.Equal(t, models.CodeInternalServerError, ledgerErr.Code)
		assert.NotContains(t, ledgerErr.Message, "connection reset")
	})

	t.Run("done context is a timeout", func(t *testing.T) {
		ctx, _ := loggingContext()
		counter := utils.MetricHandlerError.WithLabelValues("post-consent", string(models.CodeRequestTimeout))
		before := testutil.ToFloat64(counter)

		for _, cause := range []error{context.Canceled, context.DeadlineExceeded} {
			err := boundaryError(ctx, "post-consent", errors.Wrap(cause, "error reading subject"), models.ErrInternal)

			ledgerErr, ok := models.AsLedgerError(err)
			require.True(t, ok)
			assert.Equal(t, models.CodeRequestTimeout, ledgerErr.Code)
			assert.Equal(t, http.StatusRequestTimeout, ledgerErr.Status)
			assert.ErrorIs(t, err, models.TimeoutError)
		}
		assert.Equal(t, before+2, testutil.ToFloat64(counter))
	})

	t.Run("systemic errors are flagged in logs", func(t *testing.T) {
		ctx, buf := loggingContext()

		err := boundaryError(ctx, "post-consent", models.ErrIdGenerationExhausted(models.ModelSubject, 5), models.ErrInternal)

		assert.True(t, models.IsSystemic(err))
		assert.Contains(t, buf.String(), "Systemic failure in post-consent handler")
		assert.Contains(t, buf.String(), "code=ID_GENERATION_EXHAUSTED")
		assert.Contains(t, buf.String(), "systemic=true")
	})

	t.Run("request errors are not systemic", func(t *testing.T) {
		ctx, buf := loggingContext()

		boundaryError(ctx, "verify-consent", models.ErrDomainNotFound("example.com"), models.ErrInternal)

		assert.Contains(t, buf.String(), "Error in verify-consent handler")
		assert.NotContains(t, buf.String(), "systemic")
	})
}

func TestHandlers_canceled_context_is_a_timeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	uc := NewUsecases(memory.NewStorage())

	_, err := uc.NewConsentUsecase().VerifyConsent(ctx, models.VerifyConsentInput{
		Type:        models.PolicyTypeCookieBanner,
		SubjectId:   "sub_1",
		Domain:      "example.com",
		Preferences: []string{"a"},
	})
	assert.True(t, models.HasCode(err, models.CodeRequestTimeout))

	err = uc.NewIdentifyUsecase().IdentifyUser(ctx, models.IdentifyUserInput{
		ConsentId:  "cns_1",
		ExternalId: "user-1",
	})
	assert.True(t, models.HasCode(err, models.CodeRequestTimeout))
}
