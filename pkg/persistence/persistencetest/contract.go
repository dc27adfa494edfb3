// Package persistencetest holds behaviour checks shared by every
// persistence.WorkflowRepository implementation.
package persistencetest

import (
	"context"
	"testing"

	"github.com/dukex/taskcomposer/pkg/models"
	"github.com/dukex/taskcomposer/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

// NewWorkflow returns a persisted-state workflow with two steps and two arguments.
func NewWorkflow(name string) *models.Workflow {
	workflow := &models.Workflow{
		Name:  name,
		State: models.WorkflowStatePersisted,
	}

	workflow.SetArguments([]*models.Argument{
		{Key: "bucket", Default: strPtr("raw")},
		{Key: "date"},
	})
	workflow.SetSteps([]*models.Step{
		{
			Name:    "fetch",
			Service: "s3",
			Task:    "download",
			Inputs: []*models.StepInput{
				{Key: "bucket", Value: "{{bucket}}"},
				{Key: "key", Value: "data.csv"},
			},
		},
		{
			Name:    "load",
			Service: "warehouse",
			Task:    "insert",
			Inputs:  []*models.StepInput{{Key: "table", Value: "events"}},
		},
	})

	return workflow
}

// RunWorkflowRepository exercises a repository. newRepo must return an
// empty repository on every call.
func RunWorkflowRepository(t *testing.T, newRepo func(t *testing.T) persistence.WorkflowRepository) {
	t.Helper()

	t.Run("save assigns id and round trips", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		workflow := NewWorkflow("etl-daily")
		require.NoError(t, repo.Save(ctx, workflow))
		assert.NotZero(t, workflow.ID)
		assert.False(t, workflow.CreatedAt.IsZero())

		loaded, err := repo.FindByID(ctx, workflow.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assertSameDefinition(t, workflow, loaded)

		byName, err := repo.FindByName(ctx, "etl-daily")
		require.NoError(t, err)
		require.NotNil(t, byName)
		assert.Equal(t, workflow.ID, byName.ID)

		exists, err := repo.ExistsByName(ctx, "etl-daily")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("absent workflows are nil", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		byID, err := repo.FindByID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, byID)

		byName, err := repo.FindByName(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, byName)

		exists, err := repo.ExistsByName(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, exists)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("duplicate name is rejected and first is kept", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := NewWorkflow("etl-daily")
		require.NoError(t, repo.Save(ctx, first))

		second := NewWorkflow("etl-daily")
		second.SetSteps([]*models.Step{{Name: "other", Service: "ftp", Task: "get"}})

		err := repo.Save(ctx, second)
		require.Error(t, err)
		assert.ErrorIs(t, err, persistence.ErrWorkflowAlreadyExists)

		loaded, err := repo.FindByName(ctx, "etl-daily")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, first.ID, loaded.ID)
		assertSameDefinition(t, first, loaded)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("save replaces children wholesale", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		workflow := NewWorkflow("etl-daily")
		require.NoError(t, repo.Save(ctx, workflow))

		workflow.Name = "etl-hourly"
		workflow.State = models.WorkflowStateUpdated
		workflow.SetArguments([]*models.Argument{{Key: "hour"}})
		workflow.SetSteps([]*models.Step{
			{Name: "load", Service: "warehouse", Task: "insert", Inputs: []*models.StepInput{{Key: "table", Value: "hourly"}}},
		})
		require.NoError(t, repo.Save(ctx, workflow))

		loaded, err := repo.FindByID(ctx, workflow.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assertSameDefinition(t, workflow, loaded)
		assert.Equal(t, models.WorkflowStateUpdated, loaded.State)

		old, err := repo.FindByName(ctx, "etl-daily")
		require.NoError(t, err)
		assert.Nil(t, old)
	})

	t.Run("rename onto another workflow is rejected", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		daily := NewWorkflow("etl-daily")
		require.NoError(t, repo.Save(ctx, daily))

		hourly := NewWorkflow("etl-hourly")
		require.NoError(t, repo.Save(ctx, hourly))

		hourly.Name = "etl-daily"
		assert.ErrorIs(t, repo.Save(ctx, hourly), persistence.ErrWorkflowAlreadyExists)
	})

	t.Run("find all is ordered by id", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, name := range []string{"c", "a", "b"} {
			require.NoError(t, repo.Save(ctx, NewWorkflow(name)))
		}

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"c", "a", "b"}, []string{all[0].Name, all[1].Name, all[2].Name})
		assert.Less(t, all[0].ID, all[1].ID)
		assert.Less(t, all[1].ID, all[2].ID)
	})

	t.Run("delete removes owned children", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		workflow := NewWorkflow("etl-daily")
		require.NoError(t, repo.Save(ctx, workflow))

		keep := NewWorkflow("etl-hourly")
		require.NoError(t, repo.Save(ctx, keep))

		require.NoError(t, repo.Delete(ctx, workflow))

		loaded, err := repo.FindByID(ctx, workflow.ID)
		require.NoError(t, err)
		assert.Nil(t, loaded)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assertSameDefinition(t, keep, all[0])

		err = repo.Delete(ctx, workflow)
		assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
	})
}

func assertSameDefinition(t *testing.T, want, got *models.Workflow) {
	t.Helper()

	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.ID, got.ID)

	require.Len(t, got.Arguments, len(want.Arguments))

	for _, arg := range want.Arguments {
		loaded, ok := got.Argument(arg.Key)
		require.True(t, ok, "argument %s", arg.Key)
		assert.Equal(t, arg.Default, loaded.Default)
	}

	require.Len(t, got.Steps, len(want.Steps))

	for i, step := range want.Steps {
		assert.Equal(t, step.Name, got.Steps[i].Name)
		assert.Equal(t, step.Service, got.Steps[i].Service)
		assert.Equal(t, step.Task, got.Steps[i].Task)
		assert.Equal(t, i, got.Steps[i].Order)
		assert.Equal(t, step.InputMap(), got.Steps[i].InputMap())
	}
}
