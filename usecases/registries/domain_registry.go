package registries

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
	"github.com/checkmarble/consent-ledger/repositories/dbmodels"
	"github.com/checkmarble/consent-ledger/utils"
)

type DomainRegistry struct {
	registry
}

func (r DomainRegistry) FindDomainByName(ctx context.Context, name string) (*models.Domain, error) {
	return findOne(ctx, r.registry, models.ModelDomain, repositories.Query{
		Where: models.Eq("name", name),
	}, dbmodels.AdaptDomain)
}

func (r DomainRegistry) FindOrCreateDomain(ctx context.Context, name string) (models.Domain, error) {
	existing, err := r.FindDomainByName(ctx, name)
	if err != nil {
		return models.Domain{}, err
	}
	if existing != nil {
		utils.LoggerFromContext(ctx).DebugContext(ctx, "Found existing domain", "domain", name, "domain_id", existing.Id)
		return *existing, nil
	}

	id, err := r.newId(ctx, models.ModelDomain)
	if err != nil {
		return models.Domain{}, err
	}
	now := r.timestamp()
	row, err := r.storage.Create(ctx, models.ModelDomain, repositories.Row{
		"id":              id,
		"name":            name,
		"description":     fmt.Sprintf("Auto-created domain for %s", name),
		"allowed_origins": []string{},
		"is_verified":     true,
		"is_active":       true,
		"created_at":      now,
		"updated_at":      now,
	})
	if errors.Is(err, models.ConflictError) {
		// created concurrently by another request
		if existing, findErr := r.FindDomainByName(ctx, name); findErr == nil && existing != nil {
			return *existing, nil
		}
	}
	if err != nil {
		return models.Domain{}, errors.Wrap(err, "error creating domain")
	}
	if row == nil {
		return models.Domain{}, models.ErrCreationFailed(models.ModelDomain, map[string]any{"name": name})
	}
	return dbmodels.AdaptDomain(row), nil
}
