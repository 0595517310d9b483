package usecases

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
)

type LivenessUsecase struct {
	storage repositories.Storage
}

// Liveness checks that the storage answers a trivial read.
func (u LivenessUsecase) Liveness(ctx context.Context) error {
	if _, err := u.storage.FindFirst(ctx, models.ModelSubject, repositories.Query{Limit: 1}); err != nil {
		return errors.Mark(errors.Wrap(err, "storage is not reachable"), models.UnavailableError)
	}
	return nil
}
