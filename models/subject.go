package models

import "time"

const (
	IdentityProviderExternal  = "external"
	IdentityProviderAnonymous = "anonymous"

	UnknownIpAddress = "unknown"
)

// Subject is one real-world visitor. At most one subject holds a given external id.
type Subject struct {
	Id               string
	IsIdentified     bool
	ExternalId       *string
	IdentityProvider *string
	LastIpAddress    *string
	SubjectTimezone  *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type FindOrCreateSubjectInput struct {
	SubjectId         string
	ExternalSubjectId string
	IdentityProvider  string
	IpAddress         string
}
