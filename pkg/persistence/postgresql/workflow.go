package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/taskcomposer/pkg/models"
	"github.com/dukex/taskcomposer/pkg/persistence"
	"github.com/lib/pq"
)

const (
	uniqueViolation    = pq.ErrorCode("23505")
	workflowNameUnique = "workflows_name_key"
)

// WorkflowRepository handles workflow-related database operations. Arguments,
// steps and step inputs reference their parent with ON DELETE CASCADE.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const selectWorkflow = `
	SELECT
		id
	  , name
	  , state
	  , created_at
	  , updated_at
	FROM workflows
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	workflow := &models.Workflow{}

	var state string

	err := row.Scan(&workflow.ID, &workflow.Name, &state, &workflow.CreatedAt, &workflow.UpdatedAt)
	if err != nil {
		return nil, err
	}

	workflow.State = models.WorkflowState(state)

	return workflow, nil
}

// FindByID returns the workflow with the given ID.
func (r *WorkflowRepository) FindByID(ctx context.Context, id int64) (*models.Workflow, error) {
	return r.findOne(ctx, selectWorkflow+" WHERE id = $1", id)
}

// FindByName returns the workflow with the given name.
func (r *WorkflowRepository) FindByName(ctx context.Context, name string) (*models.Workflow, error) {
	return r.findOne(ctx, selectWorkflow+" WHERE name = $1", name)
}

func (r *WorkflowRepository) findOne(ctx context.Context, query string, arg any) (*models.Workflow, error) {
	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	if err := r.loadChildren(ctx, workflow); err != nil {
		return nil, err
	}

	return workflow, nil
}

// ExistsByName reports whether a workflow uses the name.
func (r *WorkflowRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool

	err := r.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM workflows WHERE name = $1)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check workflow name: %w", err)
	}

	return exists, nil
}

// FindAll returns every workflow ordered by ID.
func (r *WorkflowRepository) FindAll(ctx context.Context) ([]*models.Workflow, error) {
	rows, err := r.db.QueryContext(ctx, selectWorkflow+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer r.closeRows(ctx, rows)

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	for _, workflow := range workflows {
		if err := r.loadChildren(ctx, workflow); err != nil {
			return nil, err
		}
	}

	return workflows, nil
}

// Save inserts or replaces the workflow and all of its children in one transaction.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()

	createdAt := workflow.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	id, stepIDs, err := r.saveInTx(ctx, tx, workflow, createdAt, now)
	if err != nil {
		_ = tx.Rollback()

		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit workflow: %w", err)
	}

	// IDs are only handed out once the rows exist
	workflow.ID = id
	workflow.CreatedAt = createdAt
	workflow.UpdatedAt = now

	for i, step := range workflow.Steps {
		step.ID = stepIDs[i]
	}

	return nil
}

func (r *WorkflowRepository) saveInTx(
	ctx context.Context,
	tx *sql.Tx,
	workflow *models.Workflow,
	createdAt, updatedAt time.Time,
) (int64, []int64, error) {
	id := workflow.ID

	if id == 0 {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO workflows (name, state, created_at, updated_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, workflow.Name, string(workflow.State), createdAt, updatedAt).Scan(&id)
		if err != nil {
			return 0, nil, r.mapSaveError(workflow, err)
		}
	} else {
		result, err := tx.ExecContext(ctx, `
			UPDATE workflows
			SET name = $2, state = $3, updated_at = $4
			WHERE id = $1
		`, id, workflow.Name, string(workflow.State), updatedAt)
		if err != nil {
			return 0, nil, r.mapSaveError(workflow, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return 0, nil, fmt.Errorf("failed to update workflow: %w", err)
		}

		if affected == 0 {
			return 0, nil, persistence.NewWorkflowIDError("Save", id, persistence.ErrWorkflowNotFound)
		}

		// Children are replaced wholesale; step inputs cascade from steps
		if _, err := tx.ExecContext(ctx, "DELETE FROM workflow_args WHERE workflow_id = $1", id); err != nil {
			return 0, nil, fmt.Errorf("failed to delete existing arguments: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM workflow_steps WHERE workflow_id = $1", id); err != nil {
			return 0, nil, fmt.Errorf("failed to delete existing steps: %w", err)
		}
	}

	for _, arg := range workflow.Arguments {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO workflow_args (workflow_id, arg_key, default_value) VALUES ($1, $2, $3)",
			id, arg.Key, arg.Default)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to save argument %s: %w", arg.Key, err)
		}
	}

	stepIDs := make([]int64, 0, len(workflow.Steps))

	for _, step := range workflow.Steps {
		var stepID int64

		err := tx.QueryRowContext(ctx, `
			INSERT INTO workflow_steps (workflow_id, step_name, service, task, step_order)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, id, step.Name, step.Service, step.Task, step.Order).Scan(&stepID)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to save step %s: %w", step.Name, err)
		}

		for _, input := range step.Inputs {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO workflow_step_inputs (step_id, input_key, input_value) VALUES ($1, $2, $3)",
				stepID, input.Key, input.Value)
			if err != nil {
				return 0, nil, fmt.Errorf("failed to save input %s of step %s: %w", input.Key, step.Name, err)
			}
		}

		stepIDs = append(stepIDs, stepID)
	}

	return id, stepIDs, nil
}

func (r *WorkflowRepository) mapSaveError(workflow *models.Workflow, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == workflowNameUnique {
		return persistence.NewWorkflowError("Save", workflow.Name, persistence.ErrWorkflowAlreadyExists)
	}

	return fmt.Errorf("failed to save workflow %s: %w", workflow.Name, err)
}

// Delete removes the workflow; its arguments, steps and inputs cascade.
func (r *WorkflowRepository) Delete(ctx context.Context, workflow *models.Workflow) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to delete workflow %d: %w", workflow.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete workflow %d: %w", workflow.ID, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowIDError("Delete", workflow.ID, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func (r *WorkflowRepository) loadChildren(ctx context.Context, workflow *models.Workflow) error {
	if err := r.loadArguments(ctx, workflow); err != nil {
		return fmt.Errorf("failed to load arguments of workflow %d: %w", workflow.ID, err)
	}

	if err := r.loadSteps(ctx, workflow); err != nil {
		return fmt.Errorf("failed to load steps of workflow %d: %w", workflow.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) loadArguments(ctx context.Context, workflow *models.Workflow) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT arg_key, default_value FROM workflow_args WHERE workflow_id = $1 ORDER BY id", workflow.ID)
	if err != nil {
		return err
	}

	defer r.closeRows(ctx, rows)

	args := make([]*models.Argument, 0)

	for rows.Next() {
		var (
			arg          models.Argument
			defaultValue sql.NullString
		)

		if err := rows.Scan(&arg.Key, &defaultValue); err != nil {
			return err
		}

		if defaultValue.Valid {
			arg.Default = &defaultValue.String
		}

		args = append(args, &arg)
	}

	if err := rows.Err(); err != nil {
		return err
	}

	workflow.Arguments = args

	return nil
}

func (r *WorkflowRepository) loadSteps(ctx context.Context, workflow *models.Workflow) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, step_name, service, task, step_order
		FROM workflow_steps
		WHERE workflow_id = $1
		ORDER BY step_order
	`, workflow.ID)
	if err != nil {
		return err
	}

	defer r.closeRows(ctx, rows)

	steps := make([]*models.Step, 0)
	byID := make(map[int64]*models.Step)

	for rows.Next() {
		step := &models.Step{Inputs: make([]*models.StepInput, 0)}

		if err := rows.Scan(&step.ID, &step.Name, &step.Service, &step.Task, &step.Order); err != nil {
			return err
		}

		steps = append(steps, step)
		byID[step.ID] = step
	}

	if err := rows.Err(); err != nil {
		return err
	}

	inputs, err := r.db.QueryContext(ctx, `
		SELECT i.step_id, i.input_key, i.input_value
		FROM workflow_step_inputs i
		JOIN workflow_steps s ON s.id = i.step_id
		WHERE s.workflow_id = $1
		ORDER BY i.id
	`, workflow.ID)
	if err != nil {
		return err
	}

	defer r.closeRows(ctx, inputs)

	for inputs.Next() {
		var (
			stepID int64
			input  models.StepInput
		)

		if err := inputs.Scan(&stepID, &input.Key, &input.Value); err != nil {
			return err
		}

		if step, ok := byID[stepID]; ok {
			step.Inputs = append(step.Inputs, &input)
		}
	}

	if err := inputs.Err(); err != nil {
		return err
	}

	workflow.Steps = steps

	return nil
}

func (r *WorkflowRepository) closeRows(ctx context.Context, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}
