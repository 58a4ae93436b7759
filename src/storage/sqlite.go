package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/georgysavva/scany/v2/sqlscan"
	_ "modernc.org/sqlite"
)

//go:embed migrations/sqlite/001_settings.sql
var settingsSchema string

//go:embed migrations/sqlite/002_likes.sql
var likesSchema string

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{1, "settings", extractUpMigration(settingsSchema)},
	{2, "likes", extractUpMigration(likesSchema)},
}

// DB is the local sqlite database holding client state
type DB struct {
	path   string
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies pending migrations
func Open(path string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	store := &DB{path: path, db: db, logger: logger.With("component", "storage", "path", path)}

	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := store.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// DB returns the underlying handle
func (d *DB) DB() *sql.DB {
	return d.db
}

// Path returns the database file path
func (d *DB) Path() string {
	return d.path
}

func (d *DB) Close() error {
	return d.db.Close()
}

// MigrationStatus describes one known migration
type MigrationStatus struct {
	Version int
	Name    string
	Applied bool
}

// Migrations reports which migrations have been applied
func (d *DB) Migrations(ctx context.Context) ([]MigrationStatus, error) {
	applied, err := d.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]MigrationStatus, 0, len(migrations))
	for _, m := range migrations {
		out = append(out, MigrationStatus{
			Version: m.version,
			Name:    m.name,
			Applied: slices.Contains(applied, m.version),
		})
	}
	return out, nil
}

func (d *DB) appliedVersions(ctx context.Context) ([]int, error) {
	var versions []int
	if err := sqlscan.Select(ctx, d.db, &versions, "SELECT version FROM schema_migrations ORDER BY version"); err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	return versions, nil
}

// runMigrations runs database migrations
func (d *DB) runMigrations() error {
	createMigrationsTable := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	if _, err := d.db.Exec(createMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := d.appliedVersions(context.Background())
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if slices.Contains(applied, m.version) {
			continue
		}

		tx, err := d.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}
		d.logger.Debug("applied migration", "version", m.version, "name", m.name)
	}

	return nil
}

// extractUpMigration extracts the UP migration from goose format
func extractUpMigration(content string) string {
	lines := strings.Split(content, "\n")
	var upMigration []string
	inUp := false
	inStatement := false

	for _, line := range lines {
		if strings.Contains(line, "-- +goose Up") {
			inUp = true
			continue
		}
		if strings.Contains(line, "-- +goose Down") {
			break
		}
		if strings.Contains(line, "-- +goose StatementBegin") {
			inStatement = true
			continue
		}
		if strings.Contains(line, "-- +goose StatementEnd") {
			inStatement = false
			continue
		}
		if inUp && inStatement {
			upMigration = append(upMigration, line)
		}
	}

	return strings.Join(upMigration, "\n")
}
