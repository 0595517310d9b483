package usecases

import (
	"context"
	"slices"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/pure_utils"
	"github.com/checkmarble/consent-ledger/repositories"
	"github.com/checkmarble/consent-ledger/usecases/registries"
	"github.com/checkmarble/consent-ledger/utils"
)

type ConsentUsecase struct {
	storage    repositories.Storage
	registries registries.Registries
}

// PostConsent records a consent given by a subject, along with its consent record and
// audit log, in one transaction.
func (usecase ConsentUsecase) PostConsent(ctx context.Context, input models.PostConsentInput) (models.PostConsentResult, error) {
	ctx, span := utils.StartSpan(ctx, "ConsentUsecase.PostConsent",
		attribute.String("type", string(input.Type)))
	defer span.End()

	logger := utils.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "Handling post-consent request")
	logger.DebugContext(ctx, "Request parameters",
		"type", input.Type,
		"subject_id", input.SubjectId,
		"identity_provider", input.IdentityProvider,
		"external_subject_id", input.ExternalSubjectId,
		"domain", input.Domain)

	result, err := usecase.postConsent(ctx, input)
	if err != nil {
		return models.PostConsentResult{}, boundaryError(ctx, "post-consent", err, models.ErrInternal)
	}
	utils.MetricConsentGiven.
		With(prometheus.Labels{"type": string(input.Type)}).
		Inc()
	return result, nil
}

func (usecase ConsentUsecase) postConsent(ctx context.Context, input models.PostConsentInput) (models.PostConsentResult, error) {
	logger := utils.LoggerFromContext(ctx)
	client := utils.ClientInfoFromContext(ctx)

	subject, err := usecase.registries.SubjectRegistry.FindOrCreateSubject(ctx, models.FindOrCreateSubjectInput{
		SubjectId:         input.SubjectId,
		ExternalSubjectId: input.ExternalSubjectId,
		IdentityProvider:  input.IdentityProvider,
		IpAddress:         client.IpAddress,
	})
	if err != nil {
		return models.PostConsentResult{}, err
	}
	logger.DebugContext(ctx, "Subject found/created", "subject_id", subject.Id)

	domain, err := usecase.registries.DomainRegistry.FindOrCreateDomain(ctx, input.Domain)
	if err != nil {
		return models.PostConsentResult{}, err
	}

	policyId, err := usecase.resolvePostPolicy(ctx, input.PolicyId, input.Type)
	if err != nil {
		return models.PostConsentResult{}, err
	}

	consentedCodes := pure_utils.KeysWhere(input.Preferences, func(consented bool) bool { return consented })
	logger.DebugContext(ctx, "Consented purposes", "purposes", consentedCodes)
	purposes, err := resolvePurposes(ctx, consentedCodes,
		usecase.registries.ConsentPurposeRegistry.FindOrCreateConsentPurposeByCode)
	if err != nil {
		return models.PostConsentResult{}, err
	}
	purposeIds := pure_utils.Map(purposes, func(p models.ConsentPurpose) string { return p.Id })

	type written struct {
		consent models.Consent
		record  models.ConsentRecord
	}
	result, err := repositories.TransactionReturnValue(ctx, usecase.storage, func(tx repositories.Storage) (written, error) {
		txRegistries := usecase.registries.WithStorage(tx)

		consent, err := txRegistries.ConsentRegistry.CreateConsent(ctx, models.CreateConsentAttributes{
			SubjectId:  subject.Id,
			DomainId:   domain.Id,
			PolicyId:   &policyId,
			PurposeIds: purposeIds,
			IpAddress:  client.IpAddressOrNil(),
			UserAgent:  client.UserAgentOrNil(),
			Status:     models.ConsentStatusActive,
			GivenAt:    txRegistries.Now(),
			IsActive:   true,
		})
		if err != nil {
			return written{}, err
		}
		logger.DebugContext(ctx, "Created consent", "consent_id", consent.Id)

		record, err := txRegistries.ConsentRecordRegistry.CreateConsentRecord(ctx,
			subject.Id, consent.Id, models.ActionConsentGiven, input.Metadata)
		if err != nil {
			return written{}, err
		}

		_, err = txRegistries.AuditLogRegistry.CreateAuditLog(ctx, models.CreateAuditLogAttributes{
			EntityType: models.AuditEntityConsent,
			EntityId:   consent.Id,
			ActionType: models.ActionConsentGiven,
			SubjectId:  &subject.Id,
			IpAddress:  client.IpAddressOrNil(),
			UserAgent:  client.UserAgentOrNil(),
			Metadata: map[string]any{
				"consentId": consent.Id,
				"type":      string(input.Type),
			},
			EventTimezone: models.DefaultEventTimezone,
		})
		if err != nil {
			return written{}, err
		}
		return written{consent: consent, record: record}, nil
	})
	if err != nil {
		return models.PostConsentResult{}, err
	}

	return models.PostConsentResult{
		Id:                result.consent.Id,
		SubjectId:         subject.Id,
		ExternalSubjectId: subject.ExternalId,
		IdentityProvider:  subject.IdentityProvider,
		DomainId:          domain.Id,
		Domain:            domain.Name,
		Type:              input.Type,
		Status:            result.consent.Status,
		RecordId:          result.record.Id,
		Metadata:          input.Metadata,
		GivenAt:           result.consent.GivenAt,
	}, nil
}

// resolvePostPolicy checks an explicit policy, or falls back to the current policy of the
// type, created on first use.
func (usecase ConsentUsecase) resolvePostPolicy(ctx context.Context, policyId string, policyType models.PolicyType) (string, error) {
	if policyId == "" {
		policy, err := usecase.registries.ConsentPolicyRegistry.FindOrCreatePolicy(ctx, policyType)
		if err != nil {
			return "", err
		}
		return policy.Id, nil
	}

	policy, err := usecase.registries.ConsentPolicyRegistry.FindConsentPolicyById(ctx, policyId)
	if err != nil {
		return "", err
	}
	if policy == nil {
		return "", models.ErrPolicyNotFound(policyId, policyType)
	}
	if !policy.IsActive {
		return "", models.ErrPolicyInactive(policyId, policyType)
	}
	return policy.Id, nil
}

// VerifyConsent tells whether the most recent consents of a subject for a policy on a
// domain cover every requested purpose. The verification is audited whatever its outcome.
func (usecase ConsentUsecase) VerifyConsent(ctx context.Context, input models.VerifyConsentInput) (models.VerifyConsentResult, error) {
	ctx, span := utils.StartSpan(ctx, "ConsentUsecase.VerifyConsent",
		attribute.String("type", string(input.Type)))
	defer span.End()

	logger := utils.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "Handling verify-consent request")
	logger.DebugContext(ctx, "Request parameters",
		"type", input.Type,
		"subject_id", input.SubjectId,
		"external_subject_id", input.ExternalSubjectId,
		"domain", input.Domain,
		"policy_id", input.PolicyId,
		"preferences", input.Preferences)

	result, err := usecase.verifyConsent(ctx, input)
	if err != nil {
		return models.VerifyConsentResult{}, boundaryError(ctx, "verify-consent", err, models.ErrInternal)
	}
	utils.MetricConsentVerification.
		With(prometheus.Labels{"type": string(input.Type), "valid": strconv.FormatBool(result.IsValid)}).
		Inc()
	return result, nil
}

func (usecase ConsentUsecase) verifyConsent(ctx context.Context, input models.VerifyConsentInput) (models.VerifyConsentResult, error) {
	client := utils.ClientInfoFromContext(ctx)

	domain, err := usecase.registries.DomainRegistry.FindDomainByName(ctx, input.Domain)
	if err != nil {
		return models.VerifyConsentResult{}, err
	}
	if domain == nil {
		return models.VerifyConsentResult{}, models.ErrDomainNotFound(input.Domain)
	}

	subject, err := usecase.registries.SubjectRegistry.FindOrCreateSubject(ctx, models.FindOrCreateSubjectInput{
		SubjectId:         input.SubjectId,
		ExternalSubjectId: input.ExternalSubjectId,
		IpAddress:         client.IpAddress,
	})
	if err != nil {
		return models.VerifyConsentResult{}, err
	}

	if input.Type == models.PolicyTypeCookieBanner && len(input.Preferences) == 0 {
		return models.VerifyConsentResult{}, models.ErrPreferencesRequired(input.Type)
	}

	purposes, err := resolvePurposes(ctx, input.Preferences,
		usecase.registries.ConsentPurposeRegistry.FindOrCreateConsentPurposeByCode)
	if err != nil {
		return models.VerifyConsentResult{}, err
	}
	found := slices.DeleteFunc(purposes, func(p models.ConsentPurpose) bool { return p.Id == "" })
	if len(found) != len(input.Preferences) {
		return models.VerifyConsentResult{}, models.ErrPurposesNotFound(
			input.Preferences,
			pure_utils.Map(found, func(p models.ConsentPurpose) string { return p.Code }))
	}
	purposeIds := pure_utils.Map(found, func(p models.ConsentPurpose) string { return p.Id })

	policyId, err := usecase.resolveVerifyPolicy(ctx, input.PolicyId, input.Type)
	if err != nil {
		return models.VerifyConsentResult{}, err
	}

	consents, err := usecase.registries.ConsentRegistry.ListConsents(ctx, subject.Id, policyId, domain.Id)
	if err != nil {
		return models.VerifyConsentResult{}, err
	}
	matching := slices.DeleteFunc(consents, func(c models.Consent) bool {
		return !pure_utils.ContainsAll(c.PurposeIds, purposeIds)
	})

	metadata := map[string]any{
		"type":       string(input.Type),
		"policyId":   policyId,
		"purposeIds": purposeIds,
		"success":    len(matching) > 0,
	}
	if len(matching) > 0 {
		metadata["consentId"] = matching[0].Id
	}
	_, err = usecase.registries.AuditLogRegistry.CreateAuditLog(ctx, models.CreateAuditLogAttributes{
		EntityType:    models.AuditEntityConsentPolicy,
		EntityId:      policyId,
		ActionType:    models.ActionVerifyConsent,
		SubjectId:     &subject.Id,
		IpAddress:     client.IpAddressOrNil(),
		UserAgent:     client.UserAgentOrNil(),
		Metadata:      metadata,
		EventTimezone: models.DefaultEventTimezone,
	})
	if err != nil {
		return models.VerifyConsentResult{}, err
	}

	if len(matching) == 0 {
		return models.VerifyConsentResult{IsValid: false}, nil
	}
	return models.VerifyConsentResult{IsValid: true, Consent: &matching[0]}, nil
}

// resolveVerifyPolicy checks that an explicit policy exists with the requested type, or
// falls back to the current policy of the type.
func (usecase ConsentUsecase) resolveVerifyPolicy(ctx context.Context, policyId string, policyType models.PolicyType) (string, error) {
	if policyId == "" {
		policy, err := usecase.registries.ConsentPolicyRegistry.FindOrCreatePolicy(ctx, policyType)
		if err != nil {
			return "", err
		}
		return policy.Id, nil
	}

	policy, err := usecase.registries.ConsentPolicyRegistry.FindConsentPolicyById(ctx, policyId)
	if err != nil {
		return "", err
	}
	if policy == nil || policy.Type != policyType {
		return "", models.ErrPolicyNotFound(policyId, policyType)
	}
	return policy.Id, nil
}

// resolvePurposes runs resolve on every code concurrently and returns the purposes in the
// order of codes.
func resolvePurposes(
	ctx context.Context,
	codes []string,
	resolve func(ctx context.Context, code string) (models.ConsentPurpose, error),
) ([]models.ConsentPurpose, error) {
	purposes := make([]models.ConsentPurpose, len(codes))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, code := range codes {
		group.Go(func() error {
			purpose, err := resolve(groupCtx, code)
			if err != nil {
				return err
			}
			purposes[i] = purpose
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return purposes, nil
}
