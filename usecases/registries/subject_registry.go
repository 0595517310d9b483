package registries

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
	"github.com/checkmarble/consent-ledger/repositories/dbmodels"
	"github.com/checkmarble/consent-ledger/utils"
)

type SubjectRegistry struct {
	registry
}

func (r SubjectRegistry) FindSubjectById(ctx context.Context, subjectId string) (*models.Subject, error) {
	return findOne(ctx, r.registry, models.ModelSubject, repositories.Query{
		Where: models.Eq("id", subjectId),
	}, dbmodels.AdaptSubject)
}

func (r SubjectRegistry) FindSubjectByExternalId(ctx context.Context, externalId string) (*models.Subject, error) {
	return findOne(ctx, r.registry, models.ModelSubject, repositories.Query{
		Where: models.Eq("external_id", externalId),
	}, dbmodels.AdaptSubject)
}

// FindOrCreateSubject resolves the subject a request is about:
//   - subject id and external id must both match the same subject,
//   - a subject id alone must exist,
//   - an external id alone is upserted on the external id unique key,
//   - without identifiers, a new anonymous subject is created.
func (r SubjectRegistry) FindOrCreateSubject(ctx context.Context, input models.FindOrCreateSubjectInput) (models.Subject, error) {
	logger := utils.LoggerFromContext(ctx)
	ipAddress := input.IpAddress
	if ipAddress == "" {
		ipAddress = models.UnknownIpAddress
	}

	switch {
	case input.SubjectId != "" && input.ExternalSubjectId != "":
		subject, err := findOne(ctx, r.registry, models.ModelSubject, repositories.Query{
			Where: models.And(
				models.Eq("id", input.SubjectId),
				models.Eq("external_id", input.ExternalSubjectId),
			),
		}, dbmodels.AdaptSubject)
		if err != nil {
			return models.Subject{}, err
		}
		if subject == nil {
			logger.ErrorContext(ctx, "Subject not found",
				"provided_subject_id", input.SubjectId,
				"provided_external_id", input.ExternalSubjectId)
			return models.Subject{}, models.ErrSubjectNotFound(map[string]any{
				"providedSubjectId":  input.SubjectId,
				"providedExternalId": input.ExternalSubjectId,
			})
		}
		return *subject, nil

	case input.SubjectId != "":
		subject, err := r.FindSubjectById(ctx, input.SubjectId)
		if err != nil {
			return models.Subject{}, err
		}
		if subject == nil {
			return models.Subject{}, models.ErrSubjectNotFound(map[string]any{"subjectId": input.SubjectId})
		}
		return *subject, nil

	case input.ExternalSubjectId != "":
		return r.upsertExternalSubject(ctx, input.ExternalSubjectId, input.IdentityProvider, ipAddress)
	}

	logger.DebugContext(ctx, "Creating new anonymous subject")
	id, err := r.newId(ctx, models.ModelSubject)
	if err != nil {
		return models.Subject{}, err
	}
	now := r.timestamp()
	row, err := r.storage.Create(ctx, models.ModelSubject, repositories.Row{
		"id":                id,
		"external_id":       nil,
		"identity_provider": models.IdentityProviderAnonymous,
		"last_ip_address":   ipAddress,
		"is_identified":     false,
		"created_at":        now,
		"updated_at":        now,
	})
	if err != nil {
		return models.Subject{}, errors.Wrap(err, "error creating subject")
	}
	if row == nil {
		return models.Subject{}, models.ErrCreationFailed(models.ModelSubject, nil)
	}
	return dbmodels.AdaptSubject(row), nil
}

// upsertExternalSubject relies on the storage atomic upsert, so that concurrent first
// contacts with the same external id end up with a single subject.
func (r SubjectRegistry) upsertExternalSubject(ctx context.Context, externalId, identityProvider, ipAddress string) (models.Subject, error) {
	if identityProvider == "" {
		identityProvider = models.IdentityProviderExternal
	}
	id, err := r.newId(ctx, models.ModelSubject)
	if err != nil {
		return models.Subject{}, err
	}
	now := r.timestamp()
	_, err = r.storage.Upsert(ctx, models.ModelSubject, repositories.UpsertParams{
		OnConflict: "external_id",
		Create: repositories.Row{
			"id":                id,
			"external_id":       externalId,
			"identity_provider": identityProvider,
			"last_ip_address":   ipAddress,
			"is_identified":     true,
			"created_at":        now,
			"updated_at":        now,
		},
		Update: repositories.Row{
			"last_ip_address": ipAddress,
		},
	})
	if err != nil {
		return models.Subject{}, errors.Wrap(err, "error upserting subject by external id")
	}

	subject, err := r.FindSubjectByExternalId(ctx, externalId)
	if err != nil {
		return models.Subject{}, err
	}
	if subject == nil {
		return models.Subject{}, models.ErrCreationFailed(models.ModelSubject, map[string]any{"externalId": externalId})
	}
	return *subject, nil
}
