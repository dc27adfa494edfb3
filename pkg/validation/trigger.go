package validation

import (
	"context"
	"log/slog"

	"github.com/dukex/taskcomposer/pkg/models"
)

// Trigger validates trigger requests before an execution is submitted.
type Trigger struct {
	logger *slog.Logger
}

// NewTrigger creates a trigger validator.
func NewTrigger(logger *slog.Logger) *Trigger {
	return &Trigger{logger: logger}
}

// Validate succeeds when every argument without a default is supplied.
func (t *Trigger) Validate(ctx context.Context, workflow *models.Workflow, args map[string]string) error {
	var missing []string

	for _, arg := range workflow.Arguments {
		if !arg.Required() {
			continue
		}

		if _, ok := args[arg.Key]; !ok {
			missing = append(missing, arg.Key)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	err := &MissingArgumentsError{Keys: missing}
	t.logger.DebugContext(ctx, "Trigger is missing required arguments",
		"workflow", workflow.Name, "missing", err.Detail())

	return err
}

// ValidateParameters checks the scheduling parameters.
func (t *Trigger) ValidateParameters(ctx context.Context, parameters map[string]string) error {
	if _, err := models.ParseSchedule(parameters); err != nil {
		t.logger.DebugContext(ctx, "Trigger has invalid scheduling parameters", "error", err)

		return err
	}

	return nil
}

// ValidateRequest checks the parameters and then the arguments.
func (t *Trigger) ValidateRequest(
	ctx context.Context,
	workflow *models.Workflow,
	parameters map[string]string,
	args map[string]string,
) error {
	if err := t.ValidateParameters(ctx, parameters); err != nil {
		return err
	}

	return t.Validate(ctx, workflow, args)
}
