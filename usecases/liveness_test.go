package usecases

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/checkmarble/consent-ledger/mocks"
	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories/memory"
)

func TestLiveness(t *testing.T) {
	t.Run("reachable storage", func(t *testing.T) {
		uc := NewUsecases(memory.NewStorage())
		assert.NoError(t, uc.NewLivenessUsecase().Liveness(context.Background()))
	})

	t.Run("failing storage", func(t *testing.T) {
		storage := new(mocks.Storage)
		storage.On("FindFirst", mock.Anything, models.ModelSubject, mock.Anything).
			Return(nil, errors.New("connection refused"))

		uc := NewUsecases(storage)
		err := uc.NewLivenessUsecase().Liveness(context.Background())
		assert.ErrorIs(t, err, models.UnavailableError)
		storage.AssertExpectations(t)
	})
}
