package rpc

import (
	"context"

	"github.com/dukex/taskcomposer/pkg/otelhelper"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// traceContextInterceptor continues the caller's trace from the propagation
// fields sent as request metadata.
func traceContextInterceptor(
	ctx context.Context,
	req any,
	_ *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return handler(ctx, req)
	}

	ctx = otelhelper.ExtractHeaders(ctx, otel.GetTextMapPropagator(), func(key string) string {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}

		return ""
	})

	return handler(ctx, req)
}
