package models

import "time"

type ConsentStatus string

const (
	ConsentStatusActive    ConsentStatus = "active"
	ConsentStatusWithdrawn ConsentStatus = "withdrawn"
	ConsentStatusExpired   ConsentStatus = "expired"
)

// Consent is written once. Only its subject id is rewritten, when its subject is merged
// into another one.
type Consent struct {
	Id               string
	SubjectId        string
	DomainId         string
	PolicyId         *string
	PurposeIds       []string
	Metadata         map[string]any
	IpAddress        *string
	UserAgent        *string
	Status           ConsentStatus
	WithdrawalReason *string
	GivenAt          time.Time
	ValidUntil       *time.Time
	IsActive         bool
}

type CreateConsentAttributes struct {
	SubjectId  string
	DomainId   string
	PolicyId   *string
	PurposeIds []string
	Metadata   map[string]any
	IpAddress  *string
	UserAgent  *string
	Status     ConsentStatus
	GivenAt    time.Time
	ValidUntil *time.Time
	IsActive   bool
}

type PostConsentInput struct {
	Type              PolicyType
	SubjectId         string
	ExternalSubjectId string
	IdentityProvider  string
	Domain            string
	PolicyId          string
	Metadata          map[string]any
	// Preferences maps purpose codes to the choice of the subject.
	Preferences map[string]bool
}

type PostConsentResult struct {
	Id                string
	SubjectId         string
	ExternalSubjectId *string
	IdentityProvider  *string
	DomainId          string
	Domain            string
	Type              PolicyType
	Status            ConsentStatus
	RecordId          string
	Metadata          map[string]any
	GivenAt           time.Time
}

type VerifyConsentInput struct {
	Type              PolicyType
	SubjectId         string
	ExternalSubjectId string
	Domain            string
	PolicyId          string
	// Preferences lists the purpose codes the consent must cover.
	Preferences []string
}

type VerifyConsentResult struct {
	IsValid bool
	Consent *Consent
}

type IdentifyUserInput struct {
	ConsentId        string
	ExternalId       string
	IdentityProvider string
}
