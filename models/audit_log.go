package models

import "time"

const (
	AuditEntityConsent       = "consent"
	AuditEntityConsentPolicy = "consent_policy"

	DefaultEventTimezone = "UTC"
)

// AuditLog entries are append-only. Their subject id is the only field ever rewritten,
// during a subject merge.
type AuditLog struct {
	Id            string
	EntityType    string
	EntityId      string
	ActionType    string
	SubjectId     *string
	IpAddress     *string
	UserAgent     *string
	Changes       map[string]any
	Metadata      map[string]any
	EventTimezone string
	CreatedAt     time.Time
}

type CreateAuditLogAttributes struct {
	EntityType    string
	EntityId      string
	ActionType    string
	SubjectId     *string
	IpAddress     *string
	UserAgent     *string
	Changes       map[string]any
	Metadata      map[string]any
	EventTimezone string
}
