package registries

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
	"github.com/checkmarble/consent-ledger/repositories/dbmodels"
)

type ConsentPurposeRegistry struct {
	registry
}

func (r ConsentPurposeRegistry) FindConsentPurposeByCode(ctx context.Context, code string) (*models.ConsentPurpose, error) {
	return findOne(ctx, r.registry, models.ModelConsentPurpose, repositories.Query{
		Where: models.Eq("code", code),
	}, dbmodels.AdaptConsentPurpose)
}

func (r ConsentPurposeRegistry) FindOrCreateConsentPurposeByCode(ctx context.Context, code string) (models.ConsentPurpose, error) {
	existing, err := r.FindConsentPurposeByCode(ctx, code)
	if err != nil {
		return models.ConsentPurpose{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	id, err := r.newId(ctx, models.ModelConsentPurpose)
	if err != nil {
		return models.ConsentPurpose{}, err
	}
	now := r.timestamp()
	row, err := r.storage.Create(ctx, models.ModelConsentPurpose, repositories.Row{
		"id":           id,
		"code":         code,
		"name":         code,
		"description":  fmt.Sprintf("Auto-created consentPurpose for %s", code),
		"is_essential": false,
		"legal_basis":  models.LegalBasisConsent,
		"is_active":    true,
		"created_at":   now,
		"updated_at":   now,
	})
	if err != nil {
		return models.ConsentPurpose{}, errors.Wrap(err, "error creating consent purpose")
	}
	if row == nil {
		return models.ConsentPurpose{}, models.ErrCreationFailed(models.ModelConsentPurpose,
			map[string]any{"code": code})
	}
	return dbmodels.AdaptConsentPurpose(row), nil
}
