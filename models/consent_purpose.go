package models

import "time"

const LegalBasisConsent = "consent"

type ConsentPurpose struct {
	Id           string
	Code         string
	Name         string
	Description  string
	IsEssential  bool
	DataCategory *string
	LegalBasis   *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
