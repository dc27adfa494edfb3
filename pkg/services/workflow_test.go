package services

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/dukex/taskcomposer/pkg/catalog"
	"github.com/dukex/taskcomposer/pkg/definition"
	"github.com/dukex/taskcomposer/pkg/mocks"
	"github.com/dukex/taskcomposer/pkg/models"
	"github.com/dukex/taskcomposer/pkg/persistence/file"
	"github.com/dukex/taskcomposer/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testCatalog() *catalog.Static {
	return catalog.NewStatic(
		&models.Service{Name: "s3", Tasks: []string{"download", "upload"}},
		&models.Service{Name: "warehouse", Tasks: []string{"insert"}},
	)
}

func newTestWorkflowService(t *testing.T) (*Workflow, *file.Persistence) {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir())
	validator := validation.NewDefinition(testCatalog(), slog.Default())

	return NewWorkflow(persistence, validator, slog.Default()), persistence
}

func etlDefinition(name string) *definition.Definition {
	raw := "raw"

	return &definition.Definition{
		Name: name,
		Arguments: []definition.Argument{
			{Key: "bucket", Default: &raw},
			{Key: "date"},
		},
		Steps: []definition.Step{
			{Name: "fetch", Service: "s3", Task: "download", Input: map[string]string{"bucket": "{{bucket}}"}},
			{Name: "load", Service: "warehouse", Task: "insert", Input: map[string]string{}},
		},
	}
}

func TestNewWorkflow(t *testing.T) {
	service, persistence := newTestWorkflowService(t)

	assert.NotNil(t, service)
	assert.Equal(t, persistence, service.persistence)
}

func TestWorkflow_Create(t *testing.T) {
	service, persistence := newTestWorkflowService(t)

	created, err := service.Create(t.Context(), etlDefinition("etl-daily"))
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.NotZero(t, created.ID)
	assert.Equal(t, models.WorkflowStatePersisted, created.State)
	assert.False(t, created.CreatedAt.IsZero())
	assert.True(t, created.Triggerable())

	for i, step := range created.Steps {
		assert.Equal(t, i, step.Order)
	}

	stored, err := persistence.WorkflowRepository().FindByID(t.Context(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "etl-daily", stored.Name)
	assert.Equal(t, models.WorkflowStatePersisted, stored.State)
}

func TestWorkflow_CreateRejectsDuplicateName(t *testing.T) {
	service, _ := newTestWorkflowService(t)

	first, err := service.Create(t.Context(), etlDefinition("etl-daily"))
	require.NoError(t, err)

	_, err = service.Create(t.Context(), etlDefinition("etl-daily"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWorkflowAlreadyExists)
	assert.True(t, IsConflictError(err))

	fetched, err := service.FetchByName(t.Context(), "etl-daily")
	require.NoError(t, err)
	assert.Equal(t, first.ID, fetched.ID)
}

func TestWorkflow_CreateRejectsUnknownReferences(t *testing.T) {
	service, persistence := newTestWorkflowService(t)

	def := etlDefinition("etl-daily")
	def.Steps[1].Service = "ftp"

	_, err := service.Create(t.Context(), def)
	require.ErrorIs(t, err, validation.ErrServiceNotFound)
	assert.True(t, IsValidationError(err))

	def = etlDefinition("etl-daily")
	def.Steps[0].Task = "delete"

	_, err = service.Create(t.Context(), def)
	require.ErrorIs(t, err, validation.ErrTaskNotFound)

	all, err := persistence.WorkflowRepository().FindAll(t.Context())
	require.NoError(t, err)
	assert.Empty(t, all, "rejected definitions are not stored")
}

func TestWorkflow_CreateRequiresName(t *testing.T) {
	service, _ := newTestWorkflowService(t)

	_, err := service.Create(t.Context(), etlDefinition(""))
	assert.ErrorIs(t, err, ErrWorkflowNameRequired)

	_, err = service.Create(t.Context(), nil)
	assert.ErrorIs(t, err, ErrDefinitionRequired)
}

func TestWorkflow_CreateEmptyDefinition(t *testing.T) {
	service, _ := newTestWorkflowService(t)

	created, err := service.Create(t.Context(), &definition.Definition{Name: "noop"})
	require.NoError(t, err)
	assert.Empty(t, created.Steps)
}

func TestWorkflow_FetchByID(t *testing.T) {
	service, _ := newTestWorkflowService(t)

	created, err := service.Create(t.Context(), etlDefinition("etl-daily"))
	require.NoError(t, err)

	fetched, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, fetched.Name)

	_, err = service.FetchByID(t.Context(), 404)
	require.ErrorIs(t, err, ErrWorkflowNotFound)
	assert.True(t, IsNotFoundError(err))
}

func TestWorkflow_List(t *testing.T) {
	service, _ := newTestWorkflowService(t)

	for _, name := range []string{"etl-daily", "etl-hourly"} {
		_, err := service.Create(t.Context(), etlDefinition(name))
		require.NoError(t, err)
	}

	all, err := service.List(t.Context(), ListWorkflowsRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := service.List(t.Context(), ListWorkflowsRequest{Name: "etl-hourly"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "etl-hourly", filtered[0].Name)

	none, err := service.List(t.Context(), ListWorkflowsRequest{Name: "missing"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWorkflow_Update(t *testing.T) {
	service, _ := newTestWorkflowService(t)

	created, err := service.Create(t.Context(), etlDefinition("etl-daily"))
	require.NoError(t, err)

	def := etlDefinition("etl-daily-v2")
	def.Arguments = []definition.Argument{{Key: "region"}}
	def.Steps = def.Steps[1:]

	updated, err := service.Update(t.Context(), created.ID, def)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, models.WorkflowStateUpdated, updated.State)

	fetched, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "etl-daily-v2", fetched.Name)
	require.Len(t, fetched.Steps, 1)
	assert.Equal(t, "load", fetched.Steps[0].Name)
	assert.Equal(t, 0, fetched.Steps[0].Order)
	require.Len(t, fetched.Arguments, 1)
	assert.Equal(t, "region", fetched.Arguments[0].Key)

	// Updating again stays in the updated state
	again, err := service.Update(t.Context(), created.ID, def)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStateUpdated, again.State)
}

func TestWorkflow_UpdateErrors(t *testing.T) {
	service, _ := newTestWorkflowService(t)

	daily, err := service.Create(t.Context(), etlDefinition("etl-daily"))
	require.NoError(t, err)

	_, err = service.Create(t.Context(), etlDefinition("etl-hourly"))
	require.NoError(t, err)

	_, err = service.Update(t.Context(), 404, etlDefinition("x"))
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	_, err = service.Update(t.Context(), daily.ID, etlDefinition("etl-hourly"))
	assert.ErrorIs(t, err, ErrWorkflowAlreadyExists)

	bad := etlDefinition("etl-daily")
	bad.Steps[0].Service = "ftp"
	_, err = service.Update(t.Context(), daily.ID, bad)
	assert.ErrorIs(t, err, validation.ErrServiceNotFound)

	fetched, err := service.FetchByID(t.Context(), daily.ID)
	require.NoError(t, err)
	assert.Equal(t, "etl-daily", fetched.Name)
	assert.Equal(t, models.WorkflowStatePersisted, fetched.State)
}

func TestWorkflow_Delete(t *testing.T) {
	service, _ := newTestWorkflowService(t)

	created, err := service.Create(t.Context(), etlDefinition("etl-daily"))
	require.NoError(t, err)

	require.NoError(t, service.Delete(t.Context(), created.ID))

	_, err = service.FetchByID(t.Context(), created.ID)
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	err = service.Delete(t.Context(), created.ID)
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestWorkflow_HealthCheck(t *testing.T) {
	persistence := mocks.NewMockPersistence()
	persistence.On("HealthCheck", mock.Anything).Return(errors.New("connection refused")).Once()
	persistence.On("HealthCheck", mock.Anything).Return(nil).Once()

	service := NewWorkflow(persistence, validation.NewDefinition(testCatalog(), slog.Default()), slog.Default())

	message, healthy := service.HealthCheck(t.Context())
	assert.False(t, healthy)
	assert.Contains(t, message, "connection refused")

	message, healthy = service.HealthCheck(t.Context())
	assert.True(t, healthy)
	assert.Equal(t, "Persistence layer is healthy", message)

	persistence.AssertExpectations(t)
}

func TestWorkflow_CreateRepositoryFailure(t *testing.T) {
	persistence := mocks.NewMockPersistence()
	repo := persistence.GetMockWorkflowRepository()
	repo.On("ExistsByName", mock.Anything, "etl-daily").Return(false, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*models.Workflow")).Return(errors.New("disk full"))

	service := NewWorkflow(persistence, validation.NewDefinition(testCatalog(), slog.Default()), slog.Default())

	_, err := service.Create(t.Context(), etlDefinition("etl-daily"))
	require.Error(t, err)
	assert.False(t, IsValidationError(err))
	assert.False(t, IsConflictError(err))
	assert.False(t, IsNotFoundError(err))

	repo.AssertExpectations(t)
}
