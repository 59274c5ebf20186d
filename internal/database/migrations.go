package database

import (
	"fmt"
	"log/slog"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations contains all database migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_schema_version_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
	{
		Version: 2,
		Name:    "create_rewrites_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS rewrites (
				id TEXT PRIMARY KEY,
				original_text TEXT NOT NULL,
				mode TEXT NOT NULL,
				tone TEXT NOT NULL,
				result TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_rewrites_created_at ON rewrites(created_at);
			CREATE INDEX IF NOT EXISTS idx_rewrites_mode ON rewrites(mode);
		`,
	},
}

// Migrate runs all pending migrations.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(migrations[0].SQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("applying migration", "version", migration.Version, "name", migration.Name)
		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
