package dbmodels

import (
	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
)

func AdaptConsentRecord(row repositories.Row) models.ConsentRecord {
	return models.ConsentRecord{
		Id:         row.String("id"),
		SubjectId:  row.String("subject_id"),
		ConsentId:  row.OptString("consent_id"),
		ActionType: row.String("action_type"),
		Details:    row.Map("details"),
		CreatedAt:  row.Time("created_at"),
	}
}
