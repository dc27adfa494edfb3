package mocks

import (
	"context"

	"github.com/dukex/taskcomposer/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockCatalog is a mock implementation of catalog.Catalog.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Lookup(ctx context.Context, name string) (*models.Service, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Service), args.Error(1)
}
