package dbmodels

import (
	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
)

func AdaptSubject(row repositories.Row) models.Subject {
	return models.Subject{
		Id:               row.String("id"),
		IsIdentified:     row.Bool("is_identified"),
		ExternalId:       row.OptString("external_id"),
		IdentityProvider: row.OptString("identity_provider"),
		LastIpAddress:    row.OptString("last_ip_address"),
		SubjectTimezone:  row.OptString("subject_timezone"),
		CreatedAt:        row.Time("created_at"),
		UpdatedAt:        row.Time("updated_at"),
	}
}
