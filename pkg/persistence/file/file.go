// Package file keeps workflow definitions as JSON documents under a directory.
package file

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dukex/taskcomposer/pkg/persistence"
)

// Persistence is the directory-backed persistence.Persistence.
type Persistence struct {
	dir       string
	workflows *WorkflowRepository
}

// NewPersistence accepts either a bare path or a file:// URL.
func NewPersistence(location string) *Persistence {
	dir := strings.TrimPrefix(location, "file://")

	return &Persistence{dir: dir, workflows: NewWorkflowRepository(dir)}
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflows
}

// HealthCheck fails unless the storage directory exists.
func (p *Persistence) HealthCheck(context.Context) error {
	info, err := os.Stat(p.dir)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", p.dir)
	}

	return nil
}

// Close is a no-op; files are opened per call.
func (p *Persistence) Close(context.Context) error {
	return nil
}
