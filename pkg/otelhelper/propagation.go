package otelhelper

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/propagation"
)

// InjectHeaders writes the trace context of ctx through set, one header at a
// time. Headers that set rejects are skipped; their keys are returned.
func InjectHeaders(
	ctx context.Context,
	propagator propagation.TextMapPropagator,
	set func(key, value string) error,
) []string {
	carrier := propagation.MapCarrier{}
	propagator.Inject(ctx, carrier)

	keys := carrier.Keys()
	sort.Strings(keys)

	var failed []string

	for _, key := range keys {
		if err := set(key, carrier.Get(key)); err != nil {
			failed = append(failed, key)
		}
	}

	return failed
}

// ExtractHeaders returns ctx carrying the remote trace context found through
// get. Only the fields the propagator understands are read.
func ExtractHeaders(
	ctx context.Context,
	propagator propagation.TextMapPropagator,
	get func(key string) string,
) context.Context {
	carrier := propagation.MapCarrier{}

	for _, field := range propagator.Fields() {
		if value := get(field); value != "" {
			carrier.Set(field, value)
		}
	}

	return propagator.Extract(ctx, carrier)
}
