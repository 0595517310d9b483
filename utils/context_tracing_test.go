package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx := StoreOpenTelemetryTracerInContext(context.Background(), provider.Tracer("consent-ledger-test"))

	_, span := StartSpan(ctx, "ConsentUsecase.PostConsent", attribute.String("type", "cookie_banner"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "ConsentUsecase.PostConsent", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("type", "cookie_banner"))
}

func TestStartSpan_without_tracer(t *testing.T) {
	_, span := StartSpan(context.Background(), "ConsentUsecase.PostConsent")
	defer span.End()

	assert.False(t, span.IsRecording())
}
