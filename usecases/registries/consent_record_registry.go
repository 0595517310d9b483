package registries

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
	"github.com/checkmarble/consent-ledger/repositories/dbmodels"
)

type ConsentRecordRegistry struct {
	registry
}

func (r ConsentRecordRegistry) CreateConsentRecord(ctx context.Context, subjectId string, consentId string,
	actionType string, details map[string]any,
) (models.ConsentRecord, error) {
	id, err := r.newId(ctx, models.ModelConsentRecord)
	if err != nil {
		return models.ConsentRecord{}, err
	}
	row, err := r.storage.Create(ctx, models.ModelConsentRecord, repositories.Row{
		"id":          id,
		"subject_id":  subjectId,
		"consent_id":  consentId,
		"action_type": actionType,
		"details":     details,
		"created_at":  r.timestamp(),
	})
	if err != nil {
		return models.ConsentRecord{}, errors.Wrap(err, "error creating consent record")
	}
	if row == nil {
		return models.ConsentRecord{}, models.ErrCreationFailed(models.ModelConsentRecord, map[string]any{
			"subjectId": subjectId,
			"consentId": consentId,
		})
	}
	return dbmodels.AdaptConsentRecord(row), nil
}
