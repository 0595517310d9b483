package registries

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
	"github.com/checkmarble/consent-ledger/repositories/dbmodels"
	"github.com/checkmarble/consent-ledger/utils"
)

type ConsentRegistry struct {
	registry
}

func (r ConsentRegistry) CreateConsent(ctx context.Context, attributes models.CreateConsentAttributes) (models.Consent, error) {
	utils.LoggerFromContext(ctx).DebugContext(ctx, "Creating consent",
		"subject_id", attributes.SubjectId, "domain_id", attributes.DomainId)

	id, err := r.newId(ctx, models.ModelConsent)
	if err != nil {
		return models.Consent{}, err
	}
	givenAt := attributes.GivenAt
	if givenAt.IsZero() {
		givenAt = r.timestamp()
	}
	purposeIds := attributes.PurposeIds
	if purposeIds == nil {
		purposeIds = []string{}
	}
	row, err := r.storage.Create(ctx, models.ModelConsent, repositories.Row{
		"id":          id,
		"subject_id":  attributes.SubjectId,
		"domain_id":   attributes.DomainId,
		"policy_id":   attributes.PolicyId,
		"purpose_ids": purposeIds,
		"metadata":    attributes.Metadata,
		"ip_address":  attributes.IpAddress,
		"user_agent":  attributes.UserAgent,
		"status":      string(attributes.Status),
		"given_at":    givenAt,
		"valid_until": attributes.ValidUntil,
		"is_active":   attributes.IsActive,
	})
	if err != nil {
		return models.Consent{}, errors.Wrap(err, "error creating consent")
	}
	if row == nil {
		return models.Consent{}, models.ErrCreationFailed(models.ModelConsent, map[string]any{
			"subjectId": attributes.SubjectId,
			"domainId":  attributes.DomainId,
		})
	}
	return dbmodels.AdaptConsent(row), nil
}

func (r ConsentRegistry) FindConsentById(ctx context.Context, consentId string) (*models.Consent, error) {
	return findOne(ctx, r.registry, models.ModelConsent, repositories.Query{
		Where: models.Eq("id", consentId),
	}, dbmodels.AdaptConsent)
}

// ListConsents returns the consents of a subject for a policy on a domain, newest first.
func (r ConsentRegistry) ListConsents(ctx context.Context, subjectId, policyId, domainId string) ([]models.Consent, error) {
	rows, err := r.storage.FindMany(ctx, models.ModelConsent, repositories.Query{
		Where: models.And(
			models.Eq("subject_id", subjectId),
			models.Eq("policy_id", policyId),
			models.Eq("domain_id", domainId),
		),
		OrderBy: []models.OrderBy{models.Desc("given_at")},
	})
	if err != nil {
		return nil, errors.Wrap(err, "error listing consents")
	}
	consents := make([]models.Consent, len(rows))
	for i, row := range rows {
		consents[i] = dbmodels.AdaptConsent(row)
	}
	return consents, nil
}
