package dbmodels

import (
	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/repositories"
)

func AdaptConsent(row repositories.Row) models.Consent {
	purposeIds := row.Strings("purpose_ids")
	if purposeIds == nil {
		purposeIds = []string{}
	}
	return models.Consent{
		Id:               row.String("id"),
		SubjectId:        row.String("subject_id"),
		DomainId:         row.String("domain_id"),
		PolicyId:         row.OptString("policy_id"),
		PurposeIds:       purposeIds,
		Metadata:         row.Map("metadata"),
		IpAddress:        row.OptString("ip_address"),
		UserAgent:        row.OptString("user_agent"),
		Status:           models.ConsentStatus(row.String("status")),
		WithdrawalReason: row.OptString("withdrawal_reason"),
		GivenAt:          row.Time("given_at"),
		ValidUntil:       row.OptTime("valid_until"),
		IsActive:         row.Bool("is_active"),
	}
}
