package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dukex/taskcomposer/pkg/models"
)

// definitionFile mirrors the services.json document shared with the scheduler.
type definitionFile struct {
	Services map[string]*models.Service `json:"services"`
}

// File is a catalog loaded from a services.json document. A missing file
// yields an empty catalog.
type File struct {
	*Static

	path   string
	logger *slog.Logger
}

// NewFile loads the catalog at path.
func NewFile(ctx context.Context, logger *slog.Logger, path string) (*File, error) {
	f := &File{
		Static: NewStatic(),
		path:   filepath.Clean(path),
		logger: logger,
	}

	if err := f.Reload(ctx); err != nil {
		return nil, err
	}

	return f, nil
}

// Reload re-reads the file and swaps the catalog contents atomically. On
// error the previous contents are kept.
func (f *File) Reload(ctx context.Context) error {
	body, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.logger.WarnContext(ctx, "Service definition file not found", "path", f.path)
			f.replace(map[string]*models.Service{})

			return nil
		}

		return fmt.Errorf("failed to read service definitions %s: %w", f.path, err)
	}

	var document definitionFile
	if err := json.Unmarshal(body, &document); err != nil {
		return fmt.Errorf("failed to parse service definitions %s: %w", f.path, err)
	}

	services := make(map[string]*models.Service, len(document.Services))

	for key, service := range document.Services {
		if service == nil {
			continue
		}

		if service.Name == "" {
			service.Name = key
		}

		services[key] = service
	}

	f.replace(services)
	f.logger.DebugContext(ctx, "Service catalog loaded", "path", f.path, "services", len(services))

	return nil
}
