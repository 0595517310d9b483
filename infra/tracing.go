package infra

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type TelemetryRessources struct {
	TracerProvider    trace.TracerProvider
	Tracer            trace.Tracer
	TextMapPropagator propagation.TextMapPropagator

	shutdown func(context.Context) error
}

// Shutdown flushes the pending spans. It is a no-op on noop telemetry.
func (r TelemetryRessources) Shutdown(ctx context.Context) error {
	if r.shutdown == nil {
		return nil
	}
	return r.shutdown(ctx)
}

func NoopTelemetry() TelemetryRessources {
	return TelemetryRessources{
		TracerProvider:    noop.NewTracerProvider(),
		Tracer:            noop.NewTracerProvider().Tracer(""),
		TextMapPropagator: propagation.NewCompositeTextMapPropagator(),
	}
}

func InitTelemetry(ctx context.Context, configuration TelemetryConfiguration) (TelemetryRessources, error) {
	if !configuration.Enabled {
		return NoopTelemetry(), nil
	}

	var exporterOptions []otlptracegrpc.Option
	if configuration.OtlpEndpoint != "" {
		exporterOptions = append(exporterOptions, otlptracegrpc.WithEndpoint(configuration.OtlpEndpoint))
	}
	exporter, err := otlptracegrpc.New(ctx, exporterOptions...)
	if err != nil {
		return TelemetryRessources{}, fmt.Errorf("otlptracegrpc.New error: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(configuration.ApplicationName),
			semconv.ServiceVersion(configuration.Version),
		),
	)
	if err != nil {
		return TelemetryRessources{}, fmt.Errorf("resource.New error: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(LedgerSampler{}),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	propagators := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(propagators)

	return TelemetryRessources{
		TracerProvider:    tp,
		Tracer:            tp.Tracer(configuration.ApplicationName),
		TextMapPropagator: propagators,
		shutdown:          tp.Shutdown,
	}, nil
}

const DEFAULT_SAMPLING_RATE = 0.3

var routePrefixSampling = map[string]float64{
	"/v1/status":         0.0,
	"/v1/consent/verify": 0.1,
}

// LedgerSampler samples http spans by route and keeps every database span of a sampled
// trace.
type LedgerSampler struct{}

func (LedgerSampler) Description() string {
	return "ledger-sampler"
}

func (LedgerSampler) ShouldSample(p sdktrace.SamplingParameters) sdktrace.SamplingResult {
	psc := trace.SpanContextFromContext(p.ParentContext)

	// a span is never sampled if its parent is not, except for root spans
	if psc.HasTraceID() && !psc.IsSampled() {
		return sdktrace.NeverSample().ShouldSample(p)
	}

	prob := 1.0
	for _, attr := range p.Attributes {
		if attr.Key == semconv.HTTPRouteKey {
			prob = DEFAULT_SAMPLING_RATE
			for prefix, prefixProb := range routePrefixSampling {
				if strings.HasPrefix(attr.Value.AsString(), prefix) {
					prob = prefixProb
					break
				}
			}
			break
		}
	}
	if p.Name == "pool.acquire" || strings.HasPrefix(p.Name, "prepare ") {
		prob = 0.0
	}

	decision := sdktrace.Drop
	traceId := binary.BigEndian.Uint64(p.TraceID[:8])
	if traceId < uint64(prob*float64(math.MaxUint64)) {
		decision = sdktrace.RecordAndSample
	}

	return sdktrace.SamplingResult{
		Decision:   decision,
		Attributes: p.Attributes,
		Tracestate: psc.TraceState(),
	}
}
