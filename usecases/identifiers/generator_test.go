package identifiers

import (
	"context"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/checkmarble/consent-ledger/mocks"
	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
	"github.com/checkmarble/consent-ledger/repositories/memory"
)

func fastConfig(maxRetries int) RetryConfig {
	return RetryConfig{MaxRetries: maxRetries, BaseDelay: time.Microsecond}
}

func TestGenerateUniqueId_distinct_and_prefixed(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	prefixes := map[models.Model]string{
		models.ModelSubject:        "sub_",
		models.ModelConsent:        "cns_",
		models.ModelDomain:         "dom_",
		models.ModelConsentPolicy:  "pol_",
		models.ModelConsentPurpose: "pur_",
		models.ModelAuditLog:       "log_",
		models.ModelConsentRecord:  "rec_",
	}

	seen := make(map[string]bool)
	for model, prefix := range prefixes {
		for range 50 {
			id, err := GenerateUniqueId(ctx, storage, model, DefaultRetryConfig())
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(id, prefix), "id %s should start with %s", id, prefix)
			assert.False(t, seen[id], "id %s generated twice", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, 50*len(prefixes))
}

func TestGenerateUniqueId_retries_on_collision(t *testing.T) {
	ctx := context.Background()
	storage := new(mocks.Storage)
	storage.On("FindFirst", ctx, models.ModelConsent, mock.Anything).
		Return(repositories.Row{"id": "cns_taken"}, nil).Times(3)
	storage.On("FindFirst", ctx, models.ModelConsent, mock.Anything).
		Return(nil, nil).Once()

	id, err := NewGenerator(fastConfig(10)).GenerateUniqueId(ctx, storage, models.ModelConsent)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "cns_"))
	storage.AssertExpectations(t)
	storage.AssertNumberOfCalls(t, "FindFirst", 4)
}

func TestGenerateUniqueId_retries_on_storage_error(t *testing.T) {
	ctx := context.Background()
	storage := new(mocks.Storage)
	storage.On("FindFirst", ctx, models.ModelSubject, mock.Anything).
		Return(nil, errors.New("connection reset")).Twice()
	storage.On("FindFirst", ctx, models.ModelSubject, mock.Anything).
		Return(nil, nil).Once()

	_, err := NewGenerator(fastConfig(10)).GenerateUniqueId(ctx, storage, models.ModelSubject)

	require.NoError(t, err)
	storage.AssertNumberOfCalls(t, "FindFirst", 3)
}

func TestGenerateUniqueId_exhausted(t *testing.T) {
	ctx := context.Background()
	storage := new(mocks.Storage)
	storage.On("FindFirst", ctx, models.ModelDomain, mock.Anything).
		Return(repositories.Row{"id": "dom_taken"}, nil)

	id, err := NewGenerator(fastConfig(4)).GenerateUniqueId(ctx, storage, models.ModelDomain)

	assert.Empty(t, id)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeIdGenerationExhausted))
	assert.True(t, models.IsSystemic(err))
	ledgerErr, ok := models.AsLedgerError(err)
	require.True(t, ok)
	assert.Equal(t, 4, ledgerErr.Data["attempts"])
	assert.Equal(t, "domain", ledgerErr.Data["model"])
	storage.AssertNumberOfCalls(t, "FindFirst", 4)
}

func TestGenerateUniqueId_canceled_context(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := GenerateUniqueId(ctx, memory.NewStorage(), models.ModelSubject, fastConfig(3))

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, models.IsSystemic(err))
}

func TestGenerateUniqueId_random_source_failure(t *testing.T) {
	ctx := context.Background()
	storage := new(mocks.Storage)
	generator := NewGenerator(fastConfig(5))
	generator.random = iotest.ErrReader(errors.New("entropy unavailable"))

	_, err := generator.GenerateUniqueId(ctx, storage, models.ModelSubject)

	require.Error(t, err)
	assert.False(t, models.HasCode(err, models.CodeIdGenerationExhausted))
	storage.AssertNotCalled(t, "FindFirst", mock.Anything, mock.Anything, mock.Anything)
}

func TestNewId_time_ordered(t *testing.T) {
	start := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	generator := NewGenerator(DefaultRetryConfig())

	generator.now = func() time.Time { return start }
	first, err := generator.NewId("rec")
	require.NoError(t, err)

	generator.now = func() time.Time { return start.Add(time.Millisecond) }
	second, err := generator.NewId("rec")
	require.NoError(t, err)

	assert.Less(t, first, second)
	assert.Equal(t, len(first), len(second))

	firstTime, err := TimestampFromId(first)
	require.NoError(t, err)
	assert.True(t, start.Equal(firstTime))
	secondTime, err := TimestampFromId(second)
	require.NoError(t, err)
	assert.True(t, start.Add(time.Millisecond).Equal(secondTime))
}

func TestTimestampFromId_invalid(t *testing.T) {
	_, err := TimestampFromId("no-prefix")
	assert.ErrorIs(t, err, models.BadParameterError)

	_, err = TimestampFromId("sub_0OIl")
	assert.ErrorIs(t, err, models.BadParameterError)

	_, err = TimestampFromId("sub_abc")
	assert.ErrorIs(t, err, models.BadParameterError)
}

func TestBackoff(t *testing.T) {
	generator := NewGenerator(RetryConfig{MaxRetries: 10, BaseDelay: 5 * time.Millisecond})

	assert.Equal(t, 5*time.Millisecond, generator.backoff(0, errCollision, nil))
	assert.Equal(t, 40*time.Millisecond, generator.backoff(3, errCollision, nil))
	assert.Equal(t, time.Second, generator.backoff(9, errCollision, nil))
	assert.Equal(t, 1280*time.Millisecond, generator.backoff(8, errors.New("storage down"), nil))
	assert.Equal(t, 2*time.Second, generator.backoff(9, errors.New("storage down"), nil))
	assert.Equal(t, 2*time.Second, generator.backoff(64, errors.New("storage down"), nil))
}
