package cmd

import (
	"context"

	"github.com/dukex/taskcomposer/pkg/otelhelper"
	"go.opentelemetry.io/otel/trace"
)

// NewTracer returns an exporting tracer when enabled and a no-op one otherwise.
//
// nolint:ireturn
func NewTracer(ctx context.Context, enabled bool, serviceName string) (trace.Tracer, otelhelper.ShutdownFunc, error) {
	if !enabled {
		return otelhelper.NoopTracer(serviceName), func(context.Context) error { return nil }, nil
	}

	return otelhelper.NewTracer(ctx, serviceName)
}
