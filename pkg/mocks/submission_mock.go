package mocks

import (
	"context"

	"github.com/dukex/taskcomposer/pkg/models"
	"github.com/dukex/taskcomposer/pkg/queue"
	"github.com/stretchr/testify/mock"
)

// MockSubmitter is a mock of the execution submitter.
type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(
	ctx context.Context,
	workflow *models.Workflow,
	tags []string,
	parameters map[string]string,
	args map[string]string,
) (string, error) {
	called := m.Called(ctx, workflow, tags, parameters, args)

	return called.String(0), called.Error(1)
}

// MockPublisher is a mock implementation of queue.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, msg *queue.Message) *queue.Delivery {
	args := m.Called(ctx, msg)

	return args.Get(0).(*queue.Delivery)
}

func (m *MockPublisher) Close() error {
	args := m.Called()

	return args.Error(0)
}
