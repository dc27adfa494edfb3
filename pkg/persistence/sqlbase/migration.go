// Package sqlbase holds the SQL plumbing shared by the relational backends.
package sqlbase

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

const (
	versionTableDDL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
)`
	selectVersionSQL = `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`
	recordVersionSQL = `INSERT INTO schema_migrations (version) VALUES ($1)`
)

// MigrationManager applies numbered DDL scripts. Each script runs in its own
// transaction together with the row that records it.
type MigrationManager struct {
	db       *sql.DB
	logger   *slog.Logger
	scripts  map[int]string
	versions []int
}

func NewMigrationManager(logger *slog.Logger, db *sql.DB, migrations map[int]string) *MigrationManager {
	return &MigrationManager{
		db:       db,
		logger:   logger.With("component", "migrations"),
		scripts:  migrations,
		versions: slices.Sorted(maps.Keys(migrations)),
	}
}

// LatestVersion is the highest known script version, 0 when there are none.
func (m *MigrationManager) LatestVersion() int {
	if len(m.versions) == 0 {
		return 0
	}

	return m.versions[len(m.versions)-1]
}

// RunMigrations brings the schema up to LatestVersion.
func (m *MigrationManager) RunMigrations(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, versionTableDDL); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return err
	}

	pending := 0

	for _, version := range m.versions {
		if version <= current {
			continue
		}

		if err := m.apply(ctx, version); err != nil {
			return err
		}

		pending++
	}

	m.logger.InfoContext(ctx, "Schema is up to date", "from", current, "to", m.LatestVersion(), "applied", pending)

	return nil
}

// CurrentVersion returns the highest applied script version.
func (m *MigrationManager) CurrentVersion(ctx context.Context) (int, error) {
	var version int
	if err := m.db.QueryRowContext(ctx, selectVersionSQL).Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	return version, nil
}

func (m *MigrationManager) apply(ctx context.Context, version int) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", version, err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, m.scripts[version]); err != nil {
		return fmt.Errorf("migration %d: %w", version, err)
	}

	if _, err = tx.ExecContext(ctx, recordVersionSQL, version); err != nil {
		return fmt.Errorf("migration %d: recording version: %w", version, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("migration %d: commit: %w", version, err)
	}

	m.logger.InfoContext(ctx, "Applied migration", "version", version)

	return nil
}
