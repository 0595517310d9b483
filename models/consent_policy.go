package models

import (
	"slices"
	"time"
)

type PolicyType string

const (
	PolicyTypeCookieBanner            PolicyType = "cookie_banner"
	PolicyTypePrivacyPolicy           PolicyType = "privacy_policy"
	PolicyTypeDpa                     PolicyType = "dpa"
	PolicyTypeTermsAndConditions      PolicyType = "terms_and_conditions"
	PolicyTypeMarketingCommunications PolicyType = "marketing_communications"
	PolicyTypeAgeVerification         PolicyType = "age_verification"
	PolicyTypeOther                   PolicyType = "other"
)

var PolicyTypes = []PolicyType{
	PolicyTypeCookieBanner,
	PolicyTypePrivacyPolicy,
	PolicyTypeDpa,
	PolicyTypeTermsAndConditions,
	PolicyTypeMarketingCommunications,
	PolicyTypeAgeVerification,
	PolicyTypeOther,
}

func (t PolicyType) IsValid() bool {
	return slices.Contains(PolicyTypes, t)
}

const PlaceholderPolicyVersion = "1.0.0"

// ConsentPolicy is a versioned document. For a given type, the current policy is the most
// recent active one by effective date.
type ConsentPolicy struct {
	Id             string
	Version        string
	Type           PolicyType
	Name           string
	EffectiveDate  time.Time
	ExpirationDate *time.Time
	Content        string
	ContentHash    string
	IsActive       bool
	CreatedAt      time.Time
}
