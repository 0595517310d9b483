package utils

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MetricConsentGiven = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consent_ledger_consent_given_total",
		Help: "Number of consents recorded, by policy type",
	}, []string{"type"})

	MetricConsentVerification = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consent_ledger_consent_verification_total",
		Help: "Number of consent verifications, by policy type and outcome",
	}, []string{"type", "valid"})

	MetricSubjectIdentified = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consent_ledger_subject_identified_total",
		Help: "Number of subjects linked to an external id, by how they were linked",
	}, []string{"outcome"})

	MetricHandlerError = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consent_ledger_handler_error_total",
		Help: "Number of handler failures, by handler and error code",
	}, []string{"handler", "code"})
)

// RegisterMetrics adds the ledger collectors to reg. It panics when called twice on the
// same registerer.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		MetricConsentGiven,
		MetricConsentVerification,
		MetricSubjectIdentified,
		MetricHandlerError,
	)
}
