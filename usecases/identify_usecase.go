package usecases

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
	"github.com/checkmarble/consent-ledger/usecases/registries"
	"github.com/checkmarble/consent-ledger/utils"
)

type IdentifyUsecase struct {
	storage    repositories.Storage
	registries registries.Registries
}

// IdentifyUser links the subject of a consent to an external id. When another subject
// already holds that external id, the subject of the consent is merged into it: its
// consents, consent records and audit logs move to the other subject, then it is deleted.
// Everything happens in one transaction.
func (usecase IdentifyUsecase) IdentifyUser(ctx context.Context, input models.IdentifyUserInput) error {
	ctx, span := utils.StartSpan(ctx, "IdentifyUsecase.IdentifyUser",
		attribute.String("consent_id", input.ConsentId))
	defer span.End()

	logger := utils.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "Handling identify-user request")

	identityProvider := input.IdentityProvider
	if identityProvider == "" {
		identityProvider = models.IdentityProviderExternal
	}

	err := usecase.identifyUser(ctx, input.ConsentId, input.ExternalId, identityProvider)
	if err == nil {
		return nil
	}
	return boundaryError(ctx, "identify-user", err, func(err error) *models.LedgerError {
		return models.ErrIdentificationFailed(input.ConsentId, err)
	})
}

func (usecase IdentifyUsecase) identifyUser(ctx context.Context, consentId, externalId, identityProvider string) error {
	consent, err := usecase.registries.ConsentRegistry.FindConsentById(ctx, consentId)
	if err != nil {
		return err
	}
	if consent == nil {
		return models.ErrConsentNotFound(consentId)
	}
	client := utils.ClientInfoFromContext(ctx)

	outcome := "linked"
	err = usecase.storage.Transaction(ctx, func(tx repositories.Storage) error {
		txRegistries := usecase.registries.WithStorage(tx)
		currentSubjectId := consent.SubjectId

		// a subject never merges with itself
		row, err := tx.FindFirst(ctx, models.ModelSubject, repositories.Query{
			Where: models.And(
				models.Eq("external_id", externalId),
				models.NotEq("id", currentSubjectId),
			),
		})
		if err != nil {
			return errors.Wrap(err, "error looking up subject by external id")
		}

		metadata := map[string]any{
			"externalId":       externalId,
			"identityProvider": identityProvider,
		}
		auditSubjectId := currentSubjectId

		if row != nil {
			oldSubjectId := row.String("id")
			utils.LoggerFromContext(ctx).InfoContext(ctx, "Merging subjects",
				"current_subject_id", currentSubjectId,
				"old_subject_id", oldSubjectId,
				"external_id", externalId,
				"identity_provider", identityProvider)

			if err := mergeSubject(ctx, tx, currentSubjectId, oldSubjectId); err != nil {
				return err
			}
			metadata["mergedFrom"] = currentSubjectId
			auditSubjectId = oldSubjectId
			outcome = "merged"
		} else {
			_, err := tx.UpdateMany(ctx, models.ModelSubject, models.Eq("id", currentSubjectId), repositories.Row{
				"external_id":       externalId,
				"identity_provider": identityProvider,
				"is_identified":     true,
				"updated_at":        txRegistries.Now(),
			})
			if err != nil {
				return errors.Wrap(err, "error identifying subject")
			}
		}

		_, err = txRegistries.AuditLogRegistry.CreateAuditLog(ctx, models.CreateAuditLogAttributes{
			EntityType:    models.AuditEntityConsent,
			EntityId:      consent.Id,
			ActionType:    models.ActionIdentifyUser,
			SubjectId:     &auditSubjectId,
			IpAddress:     client.IpAddressOrNil(),
			UserAgent:     client.UserAgentOrNil(),
			Metadata:      metadata,
			EventTimezone: models.DefaultEventTimezone,
		})
		return err
	})
	if err != nil {
		return err
	}
	utils.MetricSubjectIdentified.
		With(prometheus.Labels{"outcome": outcome}).
		Inc()
	return nil
}

// mergeSubject moves every row referencing the losing subject to the winning one, then
// deletes the losing subject.
func mergeSubject(ctx context.Context, tx repositories.Storage, losingSubjectId, winningSubjectId string) error {
	for _, model := range []models.Model{models.ModelConsent, models.ModelConsentRecord, models.ModelAuditLog} {
		_, err := tx.UpdateMany(ctx, model,
			models.Eq("subject_id", losingSubjectId),
			repositories.Row{"subject_id": winningSubjectId})
		if err != nil {
			return errors.Wrapf(err, "error moving %s rows to subject %s", model, winningSubjectId)
		}
	}
	if _, err := tx.DeleteMany(ctx, models.ModelSubject, models.Eq("id", losingSubjectId)); err != nil {
		return errors.Wrapf(err, "error deleting merged subject %s", losingSubjectId)
	}
	return nil
}
