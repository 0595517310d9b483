package dbmodels

import (
	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
)

func AdaptDomain(row repositories.Row) models.Domain {
	allowedOrigins := row.Strings("allowed_origins")
	if allowedOrigins == nil {
		allowedOrigins = []string{}
	}
	return models.Domain{
		Id:             row.String("id"),
		Name:           row.String("name"),
		Description:    row.OptString("description"),
		AllowedOrigins: allowedOrigins,
		IsVerified:     row.Bool("is_verified"),
		IsActive:       row.Bool("is_active"),
		CreatedAt:      row.Time("created_at"),
		UpdatedAt:      row.Time("updated_at"),
	}
}
