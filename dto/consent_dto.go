package dto

import (
	"time"

	"github.com/guregu/null/v5"

	"github.com/checkmarble/consent-ledger/models"
)

type PostConsentBody struct {
	Type              string          `json:"type" binding:"required,oneof=cookie_banner privacy_policy dpa terms_and_conditions marketing_communications age_verification other"`
	SubjectId         string          `json:"subjectId"`
	ExternalSubjectId string          `json:"externalSubjectId"`
	IdentityProvider  string          `json:"identityProvider"`
	Domain            string          `json:"domain" binding:"required"`
	PolicyId          string          `json:"policyId"`
	Metadata          map[string]any  `json:"metadata"`
	Preferences       map[string]bool `json:"preferences"`
}

func AdaptPostConsentInput(body PostConsentBody) models.PostConsentInput {
	return models.PostConsentInput{
		Type:              models.PolicyType(body.Type),
		SubjectId:         body.SubjectId,
		ExternalSubjectId: body.ExternalSubjectId,
		IdentityProvider:  body.IdentityProvider,
		Domain:            body.Domain,
		PolicyId:          body.PolicyId,
		Metadata:          body.Metadata,
		Preferences:       body.Preferences,
	}
}

type APIPostConsentResponse struct {
	Id                string         `json:"id"`
	SubjectId         string         `json:"subjectId"`
	ExternalSubjectId null.String    `json:"externalSubjectId"`
	IdentityProvider  null.String    `json:"identityProvider"`
	DomainId          string         `json:"domainId"`
	Domain            string         `json:"domain"`
	Type              string         `json:"type"`
	Status            string         `json:"status"`
	RecordId          string         `json:"recordId"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	GivenAt           time.Time      `json:"givenAt"`
}

func AdaptPostConsentResponse(result models.PostConsentResult) APIPostConsentResponse {
	return APIPostConsentResponse{
		Id:                result.Id,
		SubjectId:         result.SubjectId,
		ExternalSubjectId: null.StringFromPtr(result.ExternalSubjectId),
		IdentityProvider:  null.StringFromPtr(result.IdentityProvider),
		DomainId:          result.DomainId,
		Domain:            result.Domain,
		Type:              string(result.Type),
		Status:            string(result.Status),
		RecordId:          result.RecordId,
		Metadata:          result.Metadata,
		GivenAt:           result.GivenAt,
	}
}

type VerifyConsentBody struct {
	Type              string   `json:"type" binding:"required,oneof=cookie_banner privacy_policy dpa terms_and_conditions marketing_communications age_verification other"`
	SubjectId         string   `json:"subjectId"`
	ExternalSubjectId string   `json:"externalSubjectId"`
	Domain            string   `json:"domain" binding:"required"`
	PolicyId          string   `json:"policyId"`
	Preferences       []string `json:"preferences" binding:"dive,required"`
}

func AdaptVerifyConsentInput(body VerifyConsentBody) models.VerifyConsentInput {
	return models.VerifyConsentInput{
		Type:              models.PolicyType(body.Type),
		SubjectId:         body.SubjectId,
		ExternalSubjectId: body.ExternalSubjectId,
		Domain:            body.Domain,
		PolicyId:          body.PolicyId,
		Preferences:       body.Preferences,
	}
}

type APIConsent struct {
	Id         string         `json:"id"`
	SubjectId  string         `json:"subjectId"`
	DomainId   string         `json:"domainId"`
	PolicyId   null.String    `json:"policyId"`
	PurposeIds []string       `json:"purposeIds"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	IpAddress  null.String    `json:"ipAddress"`
	UserAgent  null.String    `json:"userAgent"`
	Status     string         `json:"status"`
	GivenAt    time.Time      `json:"givenAt"`
	ValidUntil null.Time      `json:"validUntil"`
	IsActive   bool           `json:"isActive"`
}

func AdaptConsentDto(consent models.Consent) APIConsent {
	return APIConsent{
		Id:         consent.Id,
		SubjectId:  consent.SubjectId,
		DomainId:   consent.DomainId,
		PolicyId:   null.StringFromPtr(consent.PolicyId),
		PurposeIds: consent.PurposeIds,
		Metadata:   consent.Metadata,
		IpAddress:  null.StringFromPtr(consent.IpAddress),
		UserAgent:  null.StringFromPtr(consent.UserAgent),
		Status:     string(consent.Status),
		GivenAt:    consent.GivenAt,
		ValidUntil: null.TimeFromPtr(consent.ValidUntil),
		IsActive:   consent.IsActive,
	}
}

type APIVerifyConsentResponse struct {
	IsValid bool        `json:"isValid"`
	Consent *APIConsent `json:"consent,omitempty"`
}

func AdaptVerifyConsentResponse(result models.VerifyConsentResult) APIVerifyConsentResponse {
	response := APIVerifyConsentResponse{IsValid: result.IsValid}
	if result.Consent != nil {
		consent := AdaptConsentDto(*result.Consent)
		response.Consent = &consent
	}
	return response
}

type IdentifyUserBody struct {
	ConsentId        string `json:"consentId" binding:"required"`
	ExternalId       string `json:"externalId" binding:"required"`
	IdentityProvider string `json:"identityProvider"`
}

func AdaptIdentifyUserInput(body IdentifyUserBody) models.IdentifyUserInput {
	return models.IdentifyUserInput{
		ConsentId:        body.ConsentId,
		ExternalId:       body.ExternalId,
		IdentityProvider: body.IdentityProvider,
	}
}

type APIIdentifyUserResponse struct {
	Success bool `json:"success"`
}
