// Package validation checks workflow definitions against the service catalog
// and trigger requests against the workflow they target.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/taskcomposer/pkg/models"
)

var (
	// ErrServiceNotFound indicates a step names a service the catalog does not know.
	ErrServiceNotFound = errors.New("service not found")

	// ErrTaskNotFound indicates a step names a task its service does not offer.
	ErrTaskNotFound = errors.New("task not found")

	// ErrMissingArguments indicates a trigger omitted required workflow arguments.
	ErrMissingArguments = errors.New("missing required arguments")

	// ErrInvalidSchedule indicates a malformed cronDefinition parameter.
	ErrInvalidSchedule = models.ErrInvalidSchedule

	// ErrInvalidDelay indicates a malformed delayed parameter.
	ErrInvalidDelay = models.ErrInvalidDelay
)

// ReferenceError names the step reference that could not be resolved.
type ReferenceError struct {
	Step    string // Step name
	Service string // Referenced service
	Task    string // Referenced task, empty when the service is missing
	Err     error  // ErrServiceNotFound or ErrTaskNotFound
}

func (e *ReferenceError) Error() string {
	if errors.Is(e.Err, ErrTaskNotFound) {
		return fmt.Sprintf("%v: task %q on service %q", e.Err, e.Task, e.Service)
	}

	return fmt.Sprintf("%v: %q", e.Err, e.Service)
}

func (e *ReferenceError) Unwrap() error {
	return e.Err
}

// MissingArgumentsError reports a trigger that omitted required arguments.
// The message stays generic; Keys is meant for diagnostics only.
type MissingArgumentsError struct {
	Keys []string
}

func (e *MissingArgumentsError) Error() string {
	return ErrMissingArguments.Error()
}

func (e *MissingArgumentsError) Unwrap() error {
	return ErrMissingArguments
}

// Detail lists the missing keys for log output.
func (e *MissingArgumentsError) Detail() string {
	return strings.Join(e.Keys, ",")
}

// IsNotFound reports whether err is an unresolved service or task reference.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrServiceNotFound) || errors.Is(err, ErrTaskNotFound)
}

// IsInvalidTrigger reports whether err rejects a trigger request.
func IsInvalidTrigger(err error) bool {
	return errors.Is(err, ErrMissingArguments) ||
		errors.Is(err, ErrInvalidSchedule) ||
		errors.Is(err, ErrInvalidDelay)
}
