package services

import (
	"context"
	"log/slog"

	"github.com/dukex/taskcomposer/pkg/models"
	"github.com/dukex/taskcomposer/pkg/otelhelper"
	"github.com/dukex/taskcomposer/pkg/persistence"
	"github.com/dukex/taskcomposer/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Submitter hands a validated execution to the work queue.
type Submitter interface {
	Submit(
		ctx context.Context,
		workflow *models.Workflow,
		tags []string,
		parameters map[string]string,
		args map[string]string,
	) (string, error)
}

// TriggerRequest asks for one execution of a stored workflow.
type TriggerRequest struct {
	WorkflowName string
	Tags         []string
	Parameters   map[string]string
	Args         map[string]string
	// Origin names the edge that received the request, for tracing.
	Origin string
}

// Trigger validates trigger requests and submits executions.
type Trigger struct {
	persistence persistence.Persistence
	validator   *validation.Trigger
	submitter   Submitter
	tracer      trace.Tracer
	logger      *slog.Logger
}

// NewTrigger creates a new trigger service.
func NewTrigger(
	persistence persistence.Persistence,
	validator *validation.Trigger,
	submitter Submitter,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Trigger {
	return &Trigger{
		persistence: persistence,
		validator:   validator,
		submitter:   submitter,
		tracer:      tracer,
		logger:      logger,
	}
}

// Trigger looks up the named workflow, validates the request against it and
// submits an execution. The returned identifier correlates the request with
// the downstream execution. Step references are not re-checked against the
// catalog here; they were validated when the workflow was stored.
func (t *Trigger) Trigger(ctx context.Context, req TriggerRequest) (string, error) {
	ctx, span := otelhelper.StartSpan(ctx, t.tracer, "Start execution",
		attribute.String(otelhelper.WorkflowNameKey, req.WorkflowName),
		attribute.String(otelhelper.TriggerOriginKey, req.Origin),
	)
	defer span.End()

	executionID, err := t.trigger(ctx, req)
	if err != nil {
		otelhelper.SetError(span, err)

		return "", err
	}

	span.SetAttributes(attribute.String(otelhelper.ExecutionIDKey, executionID))

	return executionID, nil
}

func (t *Trigger) trigger(ctx context.Context, req TriggerRequest) (string, error) {
	if req.WorkflowName == "" {
		return "", NewValidationError("Trigger", "WORKFLOW_NAME_REQUIRED", "workflow name is required", ErrWorkflowNameRequired)
	}

	workflow, err := t.persistence.WorkflowRepository().FindByName(ctx, req.WorkflowName)
	if err != nil {
		return "", err
	}

	if workflow == nil {
		return "", persistence.NewWorkflowError("Trigger", req.WorkflowName, ErrWorkflowNotFound)
	}

	if !workflow.Triggerable() {
		return "", persistence.NewWorkflowError("Trigger", req.WorkflowName, ErrWorkflowNotTriggerable)
	}

	if err := t.validator.ValidateRequest(ctx, workflow, req.Parameters, req.Args); err != nil {
		return "", err
	}

	executionID, err := t.submitter.Submit(ctx, workflow, req.Tags, req.Parameters, req.Args)
	if err != nil {
		return "", err
	}

	t.logger.InfoContext(ctx, "Execution submitted",
		"workflow", workflow.Name, "workflow_id", workflow.ID, "execution_id", executionID, "tags", req.Tags)

	return executionID, nil
}
