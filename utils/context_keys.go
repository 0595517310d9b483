package utils

type ContextKey int

const (
	ContextKeyLogger ContextKey = iota
	ContextKeyClientInfo
	ContextKeyRequestId
	ContextKeyOpenTelemetryTracer
)
