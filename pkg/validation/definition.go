package validation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/taskcomposer/pkg/catalog"
	"github.com/dukex/taskcomposer/pkg/models"
)

// Definition validates that every step references a known service and task.
type Definition struct {
	catalog catalog.Catalog
	logger  *slog.Logger
}

// NewDefinition creates a definition validator backed by the given catalog.
func NewDefinition(catalog catalog.Catalog, logger *slog.Logger) *Definition {
	return &Definition{
		catalog: catalog,
		logger:  logger,
	}
}

// Validate checks steps in order and returns the first unresolved reference.
// An empty step list is valid.
func (d *Definition) Validate(ctx context.Context, steps []*models.Step) error {
	for _, step := range steps {
		service, err := d.catalog.Lookup(ctx, step.Service)
		if err != nil {
			return fmt.Errorf("failed to look up service %q: %w", step.Service, err)
		}

		if service == nil {
			d.logger.DebugContext(ctx, "Step references unknown service", "step", step.Name, "service", step.Service)

			return &ReferenceError{Step: step.Name, Service: step.Service, Err: ErrServiceNotFound}
		}

		if !service.HasTask(step.Task) {
			d.logger.DebugContext(ctx, "Step references unknown task",
				"step", step.Name, "service", step.Service, "task", step.Task)

			return &ReferenceError{Step: step.Name, Service: step.Service, Task: step.Task, Err: ErrTaskNotFound}
		}
	}

	return nil
}
