package registries

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
	"github.com/checkmarble/consent-ledger/repositories/dbmodels"
	"github.com/checkmarble/consent-ledger/utils"
)

type ConsentPolicyRegistry struct {
	registry
}

func (r ConsentPolicyRegistry) FindConsentPolicyById(ctx context.Context, policyId string) (*models.ConsentPolicy, error) {
	return findOne(ctx, r.registry, models.ModelConsentPolicy, repositories.Query{
		Where: models.Eq("id", policyId),
	}, dbmodels.AdaptConsentPolicy)
}

// FindCurrentPolicy returns the most recent active policy of the given type by effective
// date, or nil when there is none.
func (r ConsentPolicyRegistry) FindCurrentPolicy(ctx context.Context, policyType models.PolicyType) (*models.ConsentPolicy, error) {
	return findOne(ctx, r.registry, models.ModelConsentPolicy, repositories.Query{
		Where: models.And(
			models.Eq("is_active", true),
			models.Eq("type", string(policyType)),
		),
		OrderBy: []models.OrderBy{models.Desc("effective_date")},
	}, dbmodels.AdaptConsentPolicy)
}

// FindOrCreatePolicy returns the current policy of the type, creating a placeholder
// version 1.0.0 when there is none.
func (r ConsentPolicyRegistry) FindOrCreatePolicy(ctx context.Context, policyType models.PolicyType) (models.ConsentPolicy, error) {
	logger := utils.LoggerFromContext(ctx)
	existing, err := r.FindCurrentPolicy(ctx, policyType)
	if err != nil {
		return models.ConsentPolicy{}, err
	}
	if existing != nil {
		logger.DebugContext(ctx, "Found existing policy", "type", policyType, "policy_id", existing.Id)
		return *existing, nil
	}

	now := r.timestamp()
	content, contentHash := PolicyPlaceholder(string(policyType), now)
	id, err := r.newId(ctx, models.ModelConsentPolicy)
	if err != nil {
		return models.ConsentPolicy{}, err
	}
	row, err := r.storage.Create(ctx, models.ModelConsentPolicy, repositories.Row{
		"id":              id,
		"version":         models.PlaceholderPolicyVersion,
		"type":            string(policyType),
		"name":            string(policyType),
		"effective_date":  now,
		"expiration_date": nil,
		"content":         content,
		"content_hash":    contentHash,
		"is_active":       true,
		"created_at":      now,
	})
	if err != nil {
		return models.ConsentPolicy{}, errors.Wrap(err, "error creating consent policy")
	}
	if row == nil {
		return models.ConsentPolicy{}, models.ErrCreationFailed(models.ModelConsentPolicy,
			map[string]any{"type": string(policyType)})
	}
	logger.InfoContext(ctx, "Created placeholder policy", "type", policyType, "policy_id", id)
	return dbmodels.AdaptConsentPolicy(row), nil
}

// PolicyPlaceholder returns the content of an auto-generated policy and its hex encoded
// SHA-256 hash.
func PolicyPlaceholder(name string, generatedOn time.Time) (content string, contentHash string) {
	content = fmt.Sprintf("[PLACEHOLDER] This is an automatically generated version of the %s policy.\n\n"+
		"This placeholder content should be replaced with actual policy terms before being presented to users.\n\n"+
		"Generated on: %s", name, generatedOn.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	sum := sha256.Sum256([]byte(content))
	return content, hex.EncodeToString(sum[:])
}
