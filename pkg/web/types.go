// Package web provides HTTP request and response types for the workflow API.
package web

import "github.com/dukex/taskcomposer/pkg/models"

// TriggerRequest represents the request body for triggering a workflow execution.
type TriggerRequest struct {
	WorkflowName string            `json:"workflowName" validate:"required"`
	Tags         []string          `json:"tags"         validate:"omitempty,dive,required"`
	Parameters   map[string]string `json:"parameters"   validate:"omitempty,dive,keys,required,endkeys"`
	Args         map[string]string `json:"args"         validate:"omitempty,dive,keys,required,endkeys"`
}

// TriggerResponse carries the identifier of the submitted execution.
type TriggerResponse struct {
	ExecutionID string `json:"execution_id"`
}

// WorkflowListResponse wraps a list of workflows.
type WorkflowListResponse struct {
	Workflows  []*models.Workflow `json:"workflows"`
	TotalCount int                `json:"total_count"`
}
