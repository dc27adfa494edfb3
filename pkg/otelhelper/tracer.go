// Package otelhelper wires OpenTelemetry tracing for workflow submissions.
package otelhelper

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otlptracehttp "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	WorkflowIDKey    = "taskcomposer.workflow.id"
	WorkflowNameKey  = "taskcomposer.workflow.name"
	ExecutionIDKey   = "taskcomposer.execution.id"
	ExecutionTagsKey = "taskcomposer.execution.tags"
	DestinationKey   = "taskcomposer.destination.topic"
	PartitionKey     = "taskcomposer.destination.partition"
	OffsetKey        = "taskcomposer.destination.offset"
	FailedHeadersKey = "taskcomposer.headers.failed"
	TriggerOriginKey = "taskcomposer.trigger.origin"
)

// ShutdownFunc flushes pending spans and stops the exporter.
type ShutdownFunc func(context.Context) error

// NewTracer exports spans over OTLP/HTTP. The exporter endpoint comes from the
// standard OTEL_EXPORTER_OTLP_* environment variables. The provider becomes
// the global one.
//
// nolint:ireturn
func NewTracer(ctx context.Context, serviceName string) (trace.Tracer, ShutdownFunc, error) {
	res, err := serviceResource(serviceName)
	if err != nil {
		return nil, nil, fmt.Errorf("building trace resource: %w", err)
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)

	otel.SetTracerProvider(provider)
	installPropagator()

	return provider.Tracer(serviceName), provider.Shutdown, nil
}

// NoopTracer is used when tracing is disabled. Trace headers on incoming
// requests are still propagated to the published submissions.
//
// nolint:ireturn
func NoopTracer(serviceName string) trace.Tracer {
	installPropagator()

	return otel.GetTracerProvider().Tracer(serviceName)
}

// StartSpan opens a child span carrying attrs.
//
// nolint:ireturn,spancheck
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func serviceResource(serviceName string) (*resource.Resource, error) {
	own := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName))

	return resource.Merge(resource.Default(), own)
}

func installPropagator() {
	otel.SetTextMapPropagator(propagation.TraceContext{})
}
