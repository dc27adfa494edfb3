package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string {
	return &s
}

func TestWorkflow_Transition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		from    WorkflowState
		to      WorkflowState
		wantErr bool
	}{
		{name: "empty state counts as draft", from: "", to: WorkflowStateValidated},
		{name: "draft to validated", from: WorkflowStateDraft, to: WorkflowStateValidated},
		{name: "validated to persisted", from: WorkflowStateValidated, to: WorkflowStatePersisted},
		{name: "persisted to updated", from: WorkflowStatePersisted, to: WorkflowStateUpdated},
		{name: "updated to updated", from: WorkflowStateUpdated, to: WorkflowStateUpdated},
		{name: "persisted to deleted", from: WorkflowStatePersisted, to: WorkflowStateDeleted},
		{name: "updated to deleted", from: WorkflowStateUpdated, to: WorkflowStateDeleted},
		{name: "draft cannot be persisted", from: WorkflowStateDraft, to: WorkflowStatePersisted, wantErr: true},
		{name: "validated cannot be deleted", from: WorkflowStateValidated, to: WorkflowStateDeleted, wantErr: true},
		{name: "deleted is terminal", from: WorkflowStateDeleted, to: WorkflowStateUpdated, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			workflow := &Workflow{State: tt.from}
			err := workflow.Transition(tt.to)

			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.from, workflow.State)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, workflow.State)
		})
	}
}

func TestWorkflow_Triggerable(t *testing.T) {
	t.Parallel()

	assert.False(t, (&Workflow{State: WorkflowStateValidated}).Triggerable())
	assert.False(t, (&Workflow{State: WorkflowStatePersisted}).Triggerable(), "no id yet")
	assert.True(t, (&Workflow{ID: 1, State: WorkflowStatePersisted}).Triggerable())
	assert.True(t, (&Workflow{ID: 1, State: WorkflowStateUpdated}).Triggerable())
	assert.False(t, (&Workflow{ID: 1, State: WorkflowStateDeleted}).Triggerable())
}

func TestWorkflow_SetSteps_AssignsPositionalOrder(t *testing.T) {
	t.Parallel()

	for _, count := range []int{0, 1, 5} {
		steps := make([]*Step, count)
		for i := range steps {
			steps[i] = &Step{Name: "step", Service: "svc", Task: "task", Order: 42}
		}

		workflow := &Workflow{}
		workflow.SetSteps(steps)

		require.Len(t, workflow.Steps, count)

		for i, step := range workflow.Steps {
			assert.Equal(t, i, step.Order)
		}
	}
}

func TestWorkflow_ResolveArguments(t *testing.T) {
	t.Parallel()

	workflow := &Workflow{
		Arguments: []*Argument{
			{Key: "bucket", Default: stringPtr("raw")},
			{Key: "date"},
		},
	}

	resolved := workflow.ResolveArguments(map[string]string{"date": "2024-01-01", "extra": "x"})

	assert.Equal(t, map[string]string{
		"bucket": "raw",
		"date":   "2024-01-01",
		"extra":  "x",
	}, resolved)

	resolved = workflow.ResolveArguments(map[string]string{"bucket": "curated", "date": "d"})
	assert.Equal(t, "curated", resolved["bucket"])
}

func TestWorkflow_Argument(t *testing.T) {
	t.Parallel()

	workflow := &Workflow{Arguments: []*Argument{{Key: "a"}}}

	arg, ok := workflow.Argument("a")
	require.True(t, ok)
	assert.True(t, arg.Required())

	_, ok = workflow.Argument("b")
	assert.False(t, ok)
}

func TestNewExecutionSubmission_Snapshot(t *testing.T) {
	t.Parallel()

	workflow := &Workflow{
		ID:        7,
		Name:      "etl-daily",
		Arguments: []*Argument{{Key: "region", Default: stringPtr("eu")}},
		Steps: []*Step{
			{Name: "fetch", Service: "s3", Task: "download", Order: 0, Inputs: []*StepInput{{Key: "path", Value: "$args.path"}}},
			{Name: "print", Service: "echo", Task: "echo", Order: 1},
		},
	}
	tags := []string{"nightly"}
	params := map[string]string{"delayed": "10"}

	submission := NewExecutionSubmission("exec-1", workflow, tags, params, map[string]string{"path": "/tmp"})

	assert.Equal(t, "etl-daily", submission.WorkflowName)
	assert.Equal(t, int64(7), submission.WorkflowID)
	assert.Equal(t, "exec-1", submission.ExecutionID)
	assert.Equal(t, []string{"nightly"}, submission.Tags)
	assert.Equal(t, map[string]string{"region": "eu", "path": "/tmp"}, submission.Arguments)
	require.Len(t, submission.Steps, 2)
	assert.Equal(t, "fetch", submission.Steps[0].Name)
	assert.Equal(t, map[string]string{"path": "$args.path"}, submission.Steps[0].Input)
	assert.Equal(t, "print", submission.Steps[1].Name)

	// Mutating the sources must not leak into the snapshot
	tags[0] = "changed"
	params["delayed"] = "99"
	workflow.Steps[0].Inputs[0].Value = "changed"

	assert.Equal(t, []string{"nightly"}, submission.Tags)
	assert.Equal(t, "10", submission.Parameters["delayed"])
	assert.Equal(t, "$args.path", submission.Steps[0].Input["path"])
}

func TestService_HasTask(t *testing.T) {
	t.Parallel()

	service := &Service{Name: "echo", Tasks: []string{"echo", "shout"}}

	assert.True(t, service.HasTask("shout"))
	assert.False(t, service.HasTask("whisper"))
}
