package web

import (
	"errors"
	"log/slog"

	"github.com/dukex/taskcomposer/pkg/definition"
	"github.com/dukex/taskcomposer/pkg/services"
	"github.com/dukex/taskcomposer/pkg/validation"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func problem(c fiber.Ctx, status int, problemType, detail string) error {
	p := problems.NewStatusProblem(status).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(status).JSON(p)
}

// validationProblemType names the failing rule so clients can tell an
// unknown service from a bad schedule without parsing the detail.
func validationProblemType(err error) string {
	switch {
	case errors.Is(err, validation.ErrServiceNotFound):
		return "service_not_found"
	case errors.Is(err, validation.ErrTaskNotFound):
		return "task_not_found"
	case errors.Is(err, validation.ErrMissingArguments):
		return "missing_arguments"
	case errors.Is(err, validation.ErrInvalidSchedule):
		return "invalid_schedule"
	case errors.Is(err, validation.ErrInvalidDelay):
		return "invalid_delay"
	case errors.Is(err, definition.ErrMalformedDefinition):
		return "malformed_definition"
	default:
		return "validation_error"
	}
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, logger *slog.Logger, err error) error {
	switch {
	case services.IsValidationError(err):
		return problem(c, fiber.StatusBadRequest, validationProblemType(err), err.Error())

	case services.IsNotFoundError(err):
		return problem(c, fiber.StatusNotFound, "workflow_not_found", "workflow not found")

	case services.IsConflictError(err):
		return problem(c, fiber.StatusConflict, "conflict", err.Error())

	default:
		logger.ErrorContext(c.Context(), "Request failed", "path", c.Path(), "error", err)

		p := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(p)
	}
}
