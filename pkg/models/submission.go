package models

import "maps"

// ExecutionSubmission is the point-in-time record handed to the work queue
// when a workflow is triggered. Field names follow the scheduler's wire format.
type ExecutionSubmission struct {
	WorkflowName string            `json:"workflowName"`
	WorkflowID   int64             `json:"workflowID"`
	ExecutionID  string            `json:"ExecutionUUID"`
	Tags         []string          `json:"tags"`
	Parameters   map[string]string `json:"parameters"`
	Arguments    map[string]string `json:"args"`
	Steps        []SubmissionStep  `json:"steps"`
}

// SubmissionStep is the snapshot of a single step at trigger time.
type SubmissionStep struct {
	Service string            `json:"service"`
	Name    string            `json:"name"`
	Task    string            `json:"task"`
	Input   map[string]string `json:"input"`
}

// NewExecutionSubmission snapshots the workflow. Later changes to the
// workflow or to the given maps do not affect the returned record.
func NewExecutionSubmission(
	executionID string,
	workflow *Workflow,
	tags []string,
	parameters map[string]string,
	args map[string]string,
) *ExecutionSubmission {
	steps := make([]SubmissionStep, 0, len(workflow.Steps))
	for _, step := range workflow.Steps {
		steps = append(steps, SubmissionStep{
			Service: step.Service,
			Name:    step.Name,
			Task:    step.Task,
			Input:   step.InputMap(),
		})
	}

	if parameters == nil {
		parameters = map[string]string{}
	}

	return &ExecutionSubmission{
		WorkflowName: workflow.Name,
		WorkflowID:   workflow.ID,
		ExecutionID:  executionID,
		Tags:         append([]string{}, tags...),
		Parameters:   maps.Clone(parameters),
		Arguments:    workflow.ResolveArguments(args),
		Steps:        steps,
	}
}
