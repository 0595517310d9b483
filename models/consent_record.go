package models

import "time"

const (
	ActionConsentGiven  = "consent_given"
	ActionIdentifyUser  = "identify_user"
	ActionVerifyConsent = "verify_consent"
)

// ConsentRecord is an append-only event paired with each consent write.
type ConsentRecord struct {
	Id         string
	SubjectId  string
	ConsentId  *string
	ActionType string
	Details    map[string]any
	CreatedAt  time.Time
}
