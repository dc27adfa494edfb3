package web

import (
	"github.com/dukex/taskcomposer/pkg/otelhelper"
	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel"
)

// TraceContext continues the caller's trace: the propagation headers of the
// request are extracted into the request context before the handler runs.
func TraceContext() fiber.Handler {
	return func(c fiber.Ctx) error {
		c.SetContext(otelhelper.ExtractHeaders(c.Context(), otel.GetTextMapPropagator(), func(key string) string {
			return c.Get(key)
		}))

		return c.Next()
	}
}
