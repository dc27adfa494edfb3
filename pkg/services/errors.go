// Package services orchestrates workflow lifecycle and trigger handling.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/taskcomposer/pkg/definition"
	"github.com/dukex/taskcomposer/pkg/models"
	"github.com/dukex/taskcomposer/pkg/persistence"
	"github.com/dukex/taskcomposer/pkg/validation"
)

// Caller errors. The edges map them to 400, 404 and 409.
var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrWorkflowNameRequired = errors.New("workflow name is required")
	ErrDefinitionRequired   = errors.New("workflow definition is required")

	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

	ErrWorkflowAlreadyExists  = persistence.ErrWorkflowAlreadyExists
	ErrWorkflowNotTriggerable = errors.New("workflow cannot be triggered in its current state")
)

var (
	invalidErrors  = []error{ErrInvalidRequest, ErrWorkflowNameRequired, ErrDefinitionRequired, definition.ErrMalformedDefinition}
	conflictErrors = []error{ErrWorkflowAlreadyExists, ErrWorkflowNotTriggerable, models.ErrInvalidTransition}
)

// ServiceError attaches the failing operation and a stable code to err.
type ServiceError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	detail := e.Message
	if detail == "" && e.Err != nil {
		detail = e.Err.Error()
	}

	return fmt.Sprintf("%s: %s", e.Op, detail)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewValidationError wraps err as a rejected request for op.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{Op: op, Code: code, Message: message, Err: err}
}

// IsValidationError reports whether err was caused by the caller's input.
func IsValidationError(err error) bool {
	return matchesAny(err, invalidErrors) ||
		validation.IsNotFound(err) ||
		validation.IsInvalidTrigger(err)
}

// IsNotFoundError reports whether the requested workflow does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsConflictError reports whether the request clashes with stored state.
func IsConflictError(err error) bool {
	return matchesAny(err, conflictErrors)
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
