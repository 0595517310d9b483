package dbmodels

import (
	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
)

func AdaptConsentPurpose(row repositories.Row) models.ConsentPurpose {
	return models.ConsentPurpose{
		Id:           row.String("id"),
		Code:         row.String("code"),
		Name:         row.String("name"),
		Description:  row.String("description"),
		IsEssential:  row.Bool("is_essential"),
		DataCategory: row.OptString("data_category"),
		LegalBasis:   row.OptString("legal_basis"),
		IsActive:     row.Bool("is_active"),
		CreatedAt:    row.Time("created_at"),
		UpdatedAt:    row.Time("updated_at"),
	}
}
