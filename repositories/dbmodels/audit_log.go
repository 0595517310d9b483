package dbmodels

import (
	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
)

func AdaptAuditLog(row repositories.Row) models.AuditLog {
	return models.AuditLog{
		Id:            row.String("id"),
		EntityType:    row.String("entity_type"),
		EntityId:      row.String("entity_id"),
		ActionType:    row.String("action_type"),
		SubjectId:     row.OptString("subject_id"),
		IpAddress:     row.OptString("ip_address"),
		UserAgent:     row.OptString("user_agent"),
		Changes:       row.Map("changes"),
		Metadata:      row.Map("metadata"),
		EventTimezone: row.String("event_timezone"),
		CreatedAt:     row.Time("created_at"),
	}
}
