package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/taskcomposer/pkg/definition"
	"github.com/dukex/taskcomposer/pkg/models"
	"github.com/dukex/taskcomposer/pkg/persistence"
	"github.com/dukex/taskcomposer/pkg/validation"
)

// Workflow manages the lifecycle of workflow definitions.
type Workflow struct {
	persistence persistence.Persistence
	validator   *validation.Definition
	logger      *slog.Logger
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence, validator *validation.Definition, logger *slog.Logger) *Workflow {
	return &Workflow{
		persistence: persistence,
		validator:   validator,
		logger:      logger,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListWorkflowsRequest contains options for listing workflows.
type ListWorkflowsRequest struct {
	// Name filters by exact workflow name when set.
	Name string
}

// List returns the stored workflows ordered by ID.
func (w *Workflow) List(ctx context.Context, req ListWorkflowsRequest) ([]*models.Workflow, error) {
	repo := w.persistence.WorkflowRepository()

	if req.Name != "" {
		workflow, err := repo.FindByName(ctx, req.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to list workflows: %w", err)
		}

		if workflow == nil {
			return []*models.Workflow{}, nil
		}

		return []*models.Workflow{workflow}, nil
	}

	workflows, err := repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id int64) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, persistence.NewWorkflowIDError("FetchByID", id, ErrWorkflowNotFound)
	}

	return workflow, nil
}

// FetchByName retrieves a workflow by its name.
func (w *Workflow) FetchByName(ctx context.Context, name string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, persistence.NewWorkflowError("FetchByName", name, ErrWorkflowNotFound)
	}

	return workflow, nil
}

// Create validates a definition against the service catalog and stores it.
func (w *Workflow) Create(ctx context.Context, def *definition.Definition) (*models.Workflow, error) {
	if def == nil {
		return nil, ErrDefinitionRequired
	}

	workflow := def.ToWorkflow()
	if workflow.Name == "" {
		return nil, ErrWorkflowNameRequired
	}

	repo := w.persistence.WorkflowRepository()

	exists, err := repo.ExistsByName(ctx, workflow.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check workflow name: %w", err)
	}

	if exists {
		return nil, persistence.NewWorkflowError("Create", workflow.Name, ErrWorkflowAlreadyExists)
	}

	if err := w.validator.Validate(ctx, workflow.Steps); err != nil {
		return nil, err
	}

	if err := workflow.Transition(models.WorkflowStateValidated); err != nil {
		return nil, err
	}

	if err := workflow.Transition(models.WorkflowStatePersisted); err != nil {
		return nil, err
	}

	if err := repo.Save(ctx, workflow); err != nil {
		if persistence.IsWorkflowAlreadyExists(err) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "Workflow created", "workflow_id", workflow.ID, "workflow", workflow.Name,
		"steps", len(workflow.Steps))

	return workflow, nil
}

// Update re-validates a definition and replaces the stored workflow's name,
// steps and arguments.
func (w *Workflow) Update(ctx context.Context, id int64, def *definition.Definition) (*models.Workflow, error) {
	if def == nil {
		return nil, ErrDefinitionRequired
	}

	existing, err := w.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	replacement := def.ToWorkflow()
	if replacement.Name == "" {
		return nil, ErrWorkflowNameRequired
	}

	if err := w.validator.Validate(ctx, replacement.Steps); err != nil {
		return nil, err
	}

	if err := existing.Transition(models.WorkflowStateUpdated); err != nil {
		return nil, err
	}

	existing.Name = replacement.Name
	existing.SetArguments(replacement.Arguments)
	existing.SetSteps(replacement.Steps)

	if err := w.persistence.WorkflowRepository().Save(ctx, existing); err != nil {
		if persistence.IsWorkflowAlreadyExists(err) || persistence.IsWorkflowNotFound(err) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "Workflow updated", "workflow_id", existing.ID, "workflow", existing.Name)

	return existing, nil
}

// Delete removes a workflow and everything it owns.
func (w *Workflow) Delete(ctx context.Context, id int64) error {
	existing, err := w.FetchByID(ctx, id)
	if err != nil {
		return err
	}

	if err := existing.Transition(models.WorkflowStateDeleted); err != nil {
		return err
	}

	err = w.persistence.WorkflowRepository().Delete(ctx, existing)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return err
		}

		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "Workflow deleted", "workflow_id", id, "workflow", existing.Name)

	return nil
}
