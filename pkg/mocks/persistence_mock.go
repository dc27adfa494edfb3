// Package mocks provides testify mocks for the ports used across the service.
package mocks

import (
	"context"

	"github.com/dukex/taskcomposer/pkg/models"
	"github.com/dukex/taskcomposer/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockWorkflowRepository mocks persistence.WorkflowRepository.
type MockWorkflowRepository struct {
	mock.Mock
}

// value returns the first recorded return value as T, tolerating an untyped nil.
func value[T any](args mock.Arguments) T {
	v, _ := args.Get(0).(T)

	return v
}

func (m *MockWorkflowRepository) FindByName(ctx context.Context, name string) (*models.Workflow, error) {
	args := m.Called(ctx, name)

	return value[*models.Workflow](args), args.Error(1)
}

func (m *MockWorkflowRepository) FindByID(ctx context.Context, id int64) (*models.Workflow, error) {
	args := m.Called(ctx, id)

	return value[*models.Workflow](args), args.Error(1)
}

func (m *MockWorkflowRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)

	return args.Bool(0), args.Error(1)
}

func (m *MockWorkflowRepository) FindAll(ctx context.Context) ([]*models.Workflow, error) {
	args := m.Called(ctx)

	return value[[]*models.Workflow](args), args.Error(1)
}

func (m *MockWorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	return m.Called(ctx, workflow).Error(0)
}

func (m *MockWorkflowRepository) Delete(ctx context.Context, workflow *models.Workflow) error {
	return m.Called(ctx, workflow).Error(0)
}

// MockPersistence mocks persistence.Persistence around a MockWorkflowRepository.
type MockPersistence struct {
	mock.Mock

	workflows *MockWorkflowRepository
}

func NewMockPersistence() *MockPersistence {
	return &MockPersistence{workflows: &MockWorkflowRepository{}}
}

// GetMockWorkflowRepository exposes the repository so tests can set expectations on it.
func (m *MockPersistence) GetMockWorkflowRepository() *MockWorkflowRepository {
	return m.workflows
}

func (m *MockPersistence) WorkflowRepository() persistence.WorkflowRepository {
	return m.workflows
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
