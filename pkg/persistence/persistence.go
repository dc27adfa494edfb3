// Package persistence provides the storage abstraction for workflow definitions.
package persistence

import (
	"context"
	"strings"

	"github.com/dukex/taskcomposer/pkg/models"
)

// Persistence is a storage backend.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflows together with the steps, step inputs and
// arguments they own. Lookups return nil, nil when nothing matches.
type WorkflowRepository interface {
	FindByName(ctx context.Context, name string) (*models.Workflow, error)
	FindByID(ctx context.Context, id int64) (*models.Workflow, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindAll(ctx context.Context) ([]*models.Workflow, error)

	// Save inserts the workflow when its ID is zero, assigning one, and
	// otherwise replaces the stored workflow and all of its children.
	// A name already used by another workflow yields ErrWorkflowAlreadyExists.
	Save(ctx context.Context, workflow *models.Workflow) error

	// Delete removes the workflow and everything it owns.
	Delete(ctx context.Context, workflow *models.Workflow) error
}

// Scheme returns the storage scheme of a database URL. Bare paths are files.
func Scheme(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return strings.ToLower(scheme)
}
