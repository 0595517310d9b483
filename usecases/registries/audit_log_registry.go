package registries

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
	"github.com/checkmarble/consent-ledger/repositories/dbmodels"
)

type AuditLogRegistry struct {
	registry
}

// CreateAuditLog always inserts a new entry: audit entries are events, never looked up.
func (r AuditLogRegistry) CreateAuditLog(ctx context.Context, attributes models.CreateAuditLogAttributes) (models.AuditLog, error) {
	id, err := r.newId(ctx, models.ModelAuditLog)
	if err != nil {
		return models.AuditLog{}, err
	}
	timezone := attributes.EventTimezone
	if timezone == "" {
		timezone = models.DefaultEventTimezone
	}
	row, err := r.storage.Create(ctx, models.ModelAuditLog, repositories.Row{
		"id":             id,
		"entity_type":    attributes.EntityType,
		"entity_id":      attributes.EntityId,
		"action_type":    attributes.ActionType,
		"subject_id":     attributes.SubjectId,
		"ip_address":     attributes.IpAddress,
		"user_agent":     attributes.UserAgent,
		"changes":        attributes.Changes,
		"metadata":       attributes.Metadata,
		"event_timezone": timezone,
		"created_at":     r.timestamp(),
	})
	if err != nil {
		return models.AuditLog{}, errors.Wrap(err, "error creating audit log")
	}
	if row == nil {
		return models.AuditLog{}, models.ErrCreationFailed(models.ModelAuditLog, map[string]any{
			"entityType": attributes.EntityType,
			"entityId":   attributes.EntityId,
		})
	}
	return dbmodels.AdaptAuditLog(row), nil
}
