// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/taskcomposer/pkg/persistence"
	"github.com/dukex/taskcomposer/pkg/persistence/file"
	"github.com/dukex/taskcomposer/pkg/persistence/postgresql"
)

// ErrUnsupportedProvider is returned for an unknown persistence scheme or queue provider.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// NewPersistence selects the repository implementation from the URL scheme.
// A plain path or file:// URL stores workflows as JSON documents.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch provider := persistence.Scheme(databaseURL); provider {
	case "file":
		return file.NewPersistence(databaseURL), nil
	case "postgres", "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgresql persistence: %w", err)
		}

		return p, nil
	default:
		return nil, fmt.Errorf("%w: persistence %q", ErrUnsupportedProvider, provider)
	}
}
