package storage

import (
	"context"
	"fmt"
)

// SchemaVersion is the latest schema version known to this build.
func SchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// Migrate brings the schema up to SchemaVersion, one transaction per version.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	current, err := s.CurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return err
		}
		s.log.Info("schema migrated", "version", m.version, "name", m.name)
	}
	return nil
}

// CurrentVersion reads the highest applied migration version.
func (s *Store) CurrentVersion(ctx context.Context) (int, error) {
	var current int
	if err := s.db.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return 0, fmt.Errorf("migrate: read current version: %w", err)
	}
	return current, nil
}

func (s *Store) applyMigration(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range m.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: version %d statement %d: %w", m.version, i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schema_migrations(version) VALUES (?)`), m.version); err != nil {
		return fmt.Errorf("migrate: record schema version %d: %w", m.version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit version %d: %w", m.version, err)
	}
	return nil
}
