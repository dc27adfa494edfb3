package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrWorkflowAlreadyExists indicates another workflow already uses the name.
	ErrWorkflowAlreadyExists = errors.New("workflow already exists")
)

// WorkflowError wraps workflow-related errors with additional context.
type WorkflowError struct {
	Op   string // Operation being performed (e.g., "FindByID", "Save", "Delete")
	Name string // Workflow name if applicable
	ID   int64  // Workflow ID if applicable
	Err  error  // Underlying error
}

func (e *WorkflowError) Error() string {
	target := e.Name
	if target == "" {
		target = fmt.Sprintf("#%d", e.ID)
	}

	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, target, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for workflow errors.
func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a new workflow error for a named workflow.
func NewWorkflowError(op, name string, err error) *WorkflowError {
	return &WorkflowError{
		Op:   op,
		Name: name,
		Err:  err,
	}
}

// NewWorkflowIDError creates a new workflow error for a workflow identified by ID.
func NewWorkflowIDError(op string, id int64, err error) *WorkflowError {
	return &WorkflowError{
		Op:  op,
		ID:  id,
		Err: err,
	}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsWorkflowAlreadyExists checks if an error indicates a workflow name collision.
func IsWorkflowAlreadyExists(err error) bool {
	return errors.Is(err, ErrWorkflowAlreadyExists)
}
