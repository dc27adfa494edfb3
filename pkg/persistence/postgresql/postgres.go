// Package postgresql stores workflow definitions in PostgreSQL.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/taskcomposer/pkg/persistence"
	"github.com/dukex/taskcomposer/pkg/persistence/sqlbase"
	_ "github.com/lib/pq"
)

// Persistence owns the connection pool and the repositories built on it.
type Persistence struct {
	db        *sql.DB
	workflows *WorkflowRepository
}

// NewPersistence opens databaseURL, checks it is reachable and migrates the
// schema. The pool is closed again if any of that fails.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	if err := prepare(ctx, logger, db); err != nil {
		return nil, errors.Join(err, db.Close())
	}

	return &Persistence{
		db:        db,
		workflows: NewWorkflowRepository(db, logger),
	}, nil
}

func prepare(ctx context.Context, logger *slog.Logger, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("reaching postgres: %w", err)
	}

	if err := sqlbase.NewMigrationManager(logger, db, migrations()).RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrating postgres: %w", err)
	}

	return nil
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflows
}

// Close releases the connection pool.
func (p *Persistence) Close(context.Context) error {
	return p.db.Close()
}

// HealthCheck pings the database.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres unreachable: %w", err)
	}

	return nil
}
