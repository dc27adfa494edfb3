package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/taskcomposer/pkg/mocks"
	"github.com/dukex/taskcomposer/pkg/models"
	"github.com/dukex/taskcomposer/pkg/persistence/file"
	"github.com/dukex/taskcomposer/pkg/queue"
	"github.com/dukex/taskcomposer/pkg/submission"
	"github.com/dukex/taskcomposer/pkg/validation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func storedWorkflow(t *testing.T, persistence *file.Persistence, name string, args ...*models.Argument) *models.Workflow {
	t.Helper()

	workflow := &models.Workflow{Name: name, State: models.WorkflowStatePersisted}
	workflow.SetArguments(args)
	workflow.SetSteps([]*models.Step{{Name: "fetch", Service: "s3", Task: "download"}})

	require.NoError(t, persistence.WorkflowRepository().Save(t.Context(), workflow))

	return workflow
}

func newTestTrigger(t *testing.T, submitter Submitter) (*Trigger, *file.Persistence) {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir())
	service := NewTrigger(persistence, validation.NewTrigger(slog.Default()), submitter,
		noop.NewTracerProvider().Tracer("test"), slog.Default())

	return service, persistence
}

func TestTrigger_Submits(t *testing.T) {
	submitter := &mocks.MockSubmitter{}
	service, persistence := newTestTrigger(t, submitter)

	workflow := storedWorkflow(t, persistence, "etl-daily", &models.Argument{Key: "date"})

	submitter.On("Submit", mock.Anything,
		mock.MatchedBy(func(w *models.Workflow) bool { return w.ID == workflow.ID }),
		[]string{"nightly"},
		map[string]string{"delayed": "60"},
		map[string]string{"date": "2024-01-01"},
	).Return("8f14e45f-ceea-467a-9af0-6e3d3b1c5e2a", nil)

	executionID, err := service.Trigger(t.Context(), TriggerRequest{
		WorkflowName: "etl-daily",
		Tags:         []string{"nightly"},
		Parameters:   map[string]string{"delayed": "60"},
		Args:         map[string]string{"date": "2024-01-01"},
	})
	require.NoError(t, err)
	assert.Equal(t, "8f14e45f-ceea-467a-9af0-6e3d3b1c5e2a", executionID)

	submitter.AssertExpectations(t)
}

func TestTrigger_Rejections(t *testing.T) {
	submitter := &mocks.MockSubmitter{}
	service, persistence := newTestTrigger(t, submitter)

	storedWorkflow(t, persistence, "etl-daily", &models.Argument{Key: "date"})

	tests := []struct {
		name    string
		req     TriggerRequest
		wantErr error
		check   func(error) bool
	}{
		{"missing name", TriggerRequest{}, ErrWorkflowNameRequired, IsValidationError},
		{"unknown workflow", TriggerRequest{WorkflowName: "missing"}, ErrWorkflowNotFound, IsNotFoundError},
		{"missing argument", TriggerRequest{WorkflowName: "etl-daily"}, validation.ErrMissingArguments, IsValidationError},
		{
			"invalid cron",
			TriggerRequest{WorkflowName: "etl-daily", Parameters: map[string]string{"cronDefinition": "99 * * * *"}},
			validation.ErrInvalidSchedule,
			IsValidationError,
		},
		{
			"invalid delay",
			TriggerRequest{
				WorkflowName: "etl-daily",
				Parameters:   map[string]string{"delayed": "-5"},
				Args:         map[string]string{"date": "d"},
			},
			validation.ErrInvalidDelay,
			IsValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Trigger(t.Context(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, tt.check(err))
		})
	}

	submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTrigger_NotTriggerable(t *testing.T) {
	persistence := mocks.NewMockPersistence()
	persistence.GetMockWorkflowRepository().
		On("FindByName", mock.Anything, "draft").
		Return(&models.Workflow{ID: 1, Name: "draft", State: models.WorkflowStateDraft}, nil)

	submitter := &mocks.MockSubmitter{}
	service := NewTrigger(persistence, validation.NewTrigger(slog.Default()), submitter,
		noop.NewTracerProvider().Tracer("test"), slog.Default())

	_, err := service.Trigger(t.Context(), TriggerRequest{WorkflowName: "draft"})
	require.ErrorIs(t, err, ErrWorkflowNotTriggerable)
	assert.True(t, IsConflictError(err))
}

func TestTrigger_SubmitterFailure(t *testing.T) {
	submitter := &mocks.MockSubmitter{}
	service, persistence := newTestTrigger(t, submitter)

	storedWorkflow(t, persistence, "etl-daily")

	submitter.On("Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("encode failed"))

	_, err := service.Trigger(t.Context(), TriggerRequest{WorkflowName: "etl-daily"})
	require.Error(t, err)
	assert.False(t, IsValidationError(err))
}

// neverAcked leaves every delivery pending.
type neverAcked struct{}

func (neverAcked) Publish(context.Context, *queue.Message) *queue.Delivery {
	return queue.NewDelivery()
}

func (neverAcked) Close() error {
	return nil
}

func TestTrigger_UnacknowledgedSubmissionStillReturnsID(t *testing.T) {
	submitter := submission.NewSubmitter(neverAcked{}, noop.NewTracerProvider().Tracer("test"), slog.Default(),
		submission.WithAckTimeout(100*time.Millisecond))
	service, persistence := newTestTrigger(t, submitter)

	storedWorkflow(t, persistence, "etl-daily")

	first, err := service.Trigger(t.Context(), TriggerRequest{WorkflowName: "etl-daily", Tags: []string{"nightly"}})
	require.NoError(t, err)

	second, err := service.Trigger(t.Context(), TriggerRequest{WorkflowName: "etl-daily", Tags: []string{"nightly"}})
	require.NoError(t, err)

	for _, id := range []string{first, second} {
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	}

	assert.NotEqual(t, first, second)
}
