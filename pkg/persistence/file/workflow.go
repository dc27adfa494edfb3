package file

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dukex/taskcomposer/pkg/models"
	"github.com/dukex/taskcomposer/pkg/persistence"
)

// WorkflowRepository stores one JSON document per workflow under
// <root>/workflows/<id>.json. Steps, inputs and arguments live inside the
// document, so replacing or removing it replaces or removes them too.
type WorkflowRepository struct {
	root string
	mu   sync.Mutex
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

func (wr *WorkflowRepository) dir() string {
	return filepath.Join(wr.root, "workflows")
}

func (wr *WorkflowRepository) path(id int64) string {
	return filepath.Join(wr.dir(), strconv.FormatInt(id, 10)+".json")
}

// FindByID retrieves a workflow by its ID from the file system.
func (wr *WorkflowRepository) FindByID(_ context.Context, id int64) (*models.Workflow, error) {
	return wr.read(id)
}

// FindByName returns the workflow with the given name.
func (wr *WorkflowRepository) FindByName(_ context.Context, name string) (*models.Workflow, error) {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	workflows, err := wr.readAll()
	if err != nil {
		return nil, err
	}

	for _, workflow := range workflows {
		if workflow.Name == name {
			return workflow, nil
		}
	}

	return nil, nil
}

// ExistsByName reports whether a workflow uses the name.
func (wr *WorkflowRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	workflow, err := wr.FindByName(ctx, name)
	if err != nil {
		return false, err
	}

	return workflow != nil, nil
}

// FindAll returns every workflow ordered by ID.
func (wr *WorkflowRepository) FindAll(_ context.Context) ([]*models.Workflow, error) {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	return wr.readAll()
}

// Save writes the workflow document, assigning the next free ID to new workflows.
func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	err := os.MkdirAll(wr.dir(), 0o750)
	if err != nil {
		return fmt.Errorf("failed to create workflows directory: %w", err)
	}

	existing, err := wr.readAll()
	if err != nil {
		return err
	}

	var (
		maxID int64
		found bool
	)

	for _, stored := range existing {
		if stored.Name == workflow.Name && stored.ID != workflow.ID {
			return persistence.NewWorkflowError("Save", workflow.Name, persistence.ErrWorkflowAlreadyExists)
		}

		if stored.ID == workflow.ID {
			found = true
		}

		maxID = max(maxID, stored.ID)
	}

	if workflow.ID != 0 && !found {
		return persistence.NewWorkflowIDError("Save", workflow.ID, persistence.ErrWorkflowNotFound)
	}

	if workflow.ID == 0 {
		workflow.ID = maxID + 1
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %d: %w", workflow.ID, err)
	}

	return wr.write(workflow.ID, data)
}

// Delete removes the workflow document.
func (wr *WorkflowRepository) Delete(_ context.Context, workflow *models.Workflow) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	err := os.Remove(wr.path(workflow.ID))
	if os.IsNotExist(err) {
		return persistence.NewWorkflowIDError("Delete", workflow.ID, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to delete workflow %d: %w", workflow.ID, err)
	}

	return nil
}

// write replaces the document through a temporary file so readers never see
// a partial document.
func (wr *WorkflowRepository) write(id int64, data []byte) error {
	tmp, err := os.CreateTemp(wr.dir(), ".workflow-*")
	if err != nil {
		return fmt.Errorf("failed to write workflow %d: %w", id, err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write workflow %d: %w", id, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write workflow %d: %w", id, err)
	}

	if err := os.Rename(tmp.Name(), wr.path(id)); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write workflow %d: %w", id, err)
	}

	return nil
}

func (wr *WorkflowRepository) read(id int64) (*models.Workflow, error) {
	body, err := os.ReadFile(wr.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch workflow %d: %w", id, err)
	}

	var workflow models.Workflow

	err = json.Unmarshal(body, &workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %d: %w", id, err)
	}

	return &workflow, nil
}

func (wr *WorkflowRepository) readAll() ([]*models.Workflow, error) {
	files, err := fs.Glob(os.DirFS(wr.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(files))

	for _, file := range files {
		id, err := strconv.ParseInt(strings.TrimSuffix(file, ".json"), 10, 64)
		if err != nil {
			continue
		}

		workflow, err := wr.read(id)
		if err != nil {
			return nil, err
		}

		if workflow != nil {
			workflows = append(workflows, workflow)
		}
	}

	slices.SortFunc(workflows, func(a, b *models.Workflow) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return workflows, nil
}
