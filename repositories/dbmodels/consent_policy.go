package dbmodels

import (
	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
)

func AdaptConsentPolicy(row repositories.Row) models.ConsentPolicy {
	return models.ConsentPolicy{
		Id:             row.String("id"),
		Version:        row.String("version"),
		Type:           models.PolicyType(row.String("type")),
		Name:           row.String("name"),
		EffectiveDate:  row.Time("effective_date"),
		ExpirationDate: row.OptTime("expiration_date"),
		Content:        row.String("content"),
		ContentHash:    row.String("content_hash"),
		IsActive:       row.Bool("is_active"),
		CreatedAt:      row.Time("created_at"),
	}
}
