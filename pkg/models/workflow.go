// Package models defines the core domain models for workflow definitions and executions
package models

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// WorkflowState represents the lifecycle state of a workflow.
type WorkflowState string

const (
	WorkflowStateDraft     WorkflowState = "draft"     // Definition received, not validated
	WorkflowStateValidated WorkflowState = "validated" // Passed the definition validator
	WorkflowStatePersisted WorkflowState = "persisted" // Saved, has an ID
	WorkflowStateUpdated   WorkflowState = "updated"   // Re-validated and replaced after save
	WorkflowStateDeleted   WorkflowState = "deleted"   // Removed, terminal
)

// ErrInvalidTransition is returned when a workflow is moved to a state its
// current state cannot reach.
var ErrInvalidTransition = errors.New("invalid workflow state transition")

var workflowTransitions = map[WorkflowState][]WorkflowState{
	WorkflowStateDraft:     {WorkflowStateValidated},
	WorkflowStateValidated: {WorkflowStatePersisted},
	WorkflowStatePersisted: {WorkflowStateUpdated, WorkflowStateDeleted},
	WorkflowStateUpdated:   {WorkflowStateUpdated, WorkflowStateDeleted},
	WorkflowStateDeleted:   {},
}

// Workflow is a named, ordered collection of steps plus declared arguments.
// It exclusively owns its steps and arguments.
type Workflow struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	State     WorkflowState `json:"state"`
	Arguments []*Argument   `json:"args"`
	Steps     []*Step       `json:"steps"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Step is one unit of work within a workflow, naming a target service and task.
type Step struct {
	ID      int64        `json:"id,omitempty"`
	Name    string       `json:"step_name"`
	Service string       `json:"service"`
	Task    string       `json:"task"`
	Order   int          `json:"step_order"`
	Inputs  []*StepInput `json:"inputs"`
}

// StepInput is a literal or templated parameter passed to the step's task.
// Values are opaque to this service.
type StepInput struct {
	Key   string `json:"input_key"`
	Value string `json:"input_value"`
}

// Argument is a declared parameter of a workflow. A nil Default marks the
// argument as required at trigger time.
type Argument struct {
	Key     string  `json:"arg_key"`
	Default *string `json:"default_value,omitempty"`
}

// Required reports whether a trigger must supply the argument explicitly.
func (a *Argument) Required() bool {
	return a.Default == nil
}

// Transition moves the workflow to the given state.
func (w *Workflow) Transition(to WorkflowState) error {
	from := w.State
	if from == "" {
		from = WorkflowStateDraft
	}

	if !slices.Contains(workflowTransitions[from], to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	w.State = to

	return nil
}

// Triggerable reports whether the workflow may be executed. Only stored
// workflows can be triggered.
func (w *Workflow) Triggerable() bool {
	if w.ID == 0 {
		return false
	}

	return w.State == WorkflowStatePersisted || w.State == WorkflowStateUpdated
}

// SetSteps replaces the owned steps wholesale, renumbering them by position.
func (w *Workflow) SetSteps(steps []*Step) {
	w.Steps = make([]*Step, 0, len(steps))

	for i, step := range steps {
		step.Order = i
		w.Steps = append(w.Steps, step)
	}
}

// SetArguments replaces the owned arguments wholesale.
func (w *Workflow) SetArguments(args []*Argument) {
	w.Arguments = make([]*Argument, 0, len(args))
	w.Arguments = append(w.Arguments, args...)
}

// Argument returns the declared argument with the given key, if any.
func (w *Workflow) Argument(key string) (*Argument, bool) {
	for _, arg := range w.Arguments {
		if arg.Key == key {
			return arg, true
		}
	}

	return nil, false
}

// ResolveArguments overlays the supplied values on the declared defaults.
// Supplied keys that are not declared are passed through unchanged.
func (w *Workflow) ResolveArguments(supplied map[string]string) map[string]string {
	resolved := make(map[string]string, len(w.Arguments)+len(supplied))

	for _, arg := range w.Arguments {
		if arg.Default != nil {
			resolved[arg.Key] = *arg.Default
		}
	}

	for key, value := range supplied {
		resolved[key] = value
	}

	return resolved
}

// InputMap returns the step inputs as a key/value map.
func (s *Step) InputMap() map[string]string {
	inputs := make(map[string]string, len(s.Inputs))
	for _, input := range s.Inputs {
		inputs[input.Key] = input.Value
	}

	return inputs
}
