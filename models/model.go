package models

import "slices"

// Model names a ledger table, independently of the storage engine.
type Model string

const (
	ModelSubject        Model = "subject"
	ModelDomain         Model = "domain"
	ModelConsentPolicy  Model = "consent_policy"
	ModelConsentPurpose Model = "consent_purpose"
	ModelConsent        Model = "consent"
	ModelConsentRecord  Model = "consent_record"
	ModelAuditLog       Model = "audit_log"
)

var AllModels = []Model{
	ModelSubject,
	ModelDomain,
	ModelConsentPolicy,
	ModelConsentPurpose,
	ModelConsent,
	ModelConsentRecord,
	ModelAuditLog,
}

// ModelSchema describes what every storage engine needs to know about a model: where it
// lives, which columns it has, which of them hold json documents and which are unique keys.
type ModelSchema struct {
	Table         string
	IdPrefix      string
	Columns       []string
	JsonColumns   []string
	UniqueColumns []string
}

var modelSchemas = map[Model]ModelSchema{
	ModelSubject: {
		Table:    "subjects",
		IdPrefix: "sub",
		Columns: []string{
			"id", "is_identified", "external_id", "identity_provider",
			"last_ip_address", "subject_timezone", "created_at", "updated_at",
		},
		UniqueColumns: []string{"id", "external_id"},
	},
	ModelDomain: {
		Table:    "domains",
		IdPrefix: "dom",
		Columns: []string{
			"id", "name", "description", "allowed_origins", "is_verified",
			"is_active", "created_at", "updated_at",
		},
		JsonColumns:   []string{"allowed_origins"},
		UniqueColumns: []string{"id", "name"},
	},
	ModelConsentPolicy: {
		Table:    "consent_policies",
		IdPrefix: "pol",
		Columns: []string{
			"id", "version", "type", "name", "effective_date", "expiration_date",
			"content", "content_hash", "is_active", "created_at",
		},
		UniqueColumns: []string{"id"},
	},
	ModelConsentPurpose: {
		Table:    "consent_purposes",
		IdPrefix: "pur",
		Columns: []string{
			"id", "code", "name", "description", "is_essential", "data_category",
			"legal_basis", "is_active", "created_at", "updated_at",
		},
		UniqueColumns: []string{"id"},
	},
	ModelConsent: {
		Table:    "consents",
		IdPrefix: "cns",
		Columns: []string{
			"id", "subject_id", "domain_id", "policy_id", "purpose_ids", "metadata",
			"ip_address", "user_agent", "status", "withdrawal_reason", "given_at",
			"valid_until", "is_active",
		},
		JsonColumns:   []string{"purpose_ids", "metadata"},
		UniqueColumns: []string{"id"},
	},
	ModelConsentRecord: {
		Table:    "consent_records",
		IdPrefix: "rec",
		Columns: []string{
			"id", "subject_id", "consent_id", "action_type", "details", "created_at",
		},
		JsonColumns:   []string{"details"},
		UniqueColumns: []string{"id"},
	},
	ModelAuditLog: {
		Table:    "audit_logs",
		IdPrefix: "log",
		Columns: []string{
			"id", "entity_type", "entity_id", "action_type", "subject_id", "ip_address",
			"user_agent", "changes", "metadata", "event_timezone", "created_at",
		},
		JsonColumns:   []string{"changes", "metadata"},
		UniqueColumns: []string{"id"},
	},
}

func (m Model) Schema() (ModelSchema, bool) {
	schema, ok := modelSchemas[m]
	return schema, ok
}

func (m Model) IsValid() bool {
	_, ok := modelSchemas[m]
	return ok
}

func (m Model) String() string {
	return string(m)
}

func (s ModelSchema) HasColumn(column string) bool {
	return slices.Contains(s.Columns, column)
}

func (s ModelSchema) IsJsonColumn(column string) bool {
	return slices.Contains(s.JsonColumns, column)
}

func (s ModelSchema) IsUniqueColumn(column string) bool {
	return slices.Contains(s.UniqueColumns, column)
}
