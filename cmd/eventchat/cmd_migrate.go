package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/elee1766/eventchat/src/storage"
)

// MigrateCmd manages database migrations
type MigrateCmd struct {
	Up     MigrateUpCmd     `cmd:"" help:"Run pending migrations"`
	Status MigrateStatusCmd `cmd:"" help:"Show migration status"`
}

// MigrateUpCmd runs pending migrations
type MigrateUpCmd struct{}

// Run executes the migrate up command
func (c *MigrateUpCmd) Run(ctx context.Context, cli *CLI) error {
	db, err := cli.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Printf("Database ready: %s\n", db.Path())
	return printMigrations(ctx, db)
}

// MigrateStatusCmd shows migration status
type MigrateStatusCmd struct{}

// Run executes the migrate status command
func (c *MigrateStatusCmd) Run(ctx context.Context, cli *CLI) error {
	db, err := cli.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	return printMigrations(ctx, db)
}

// openDB opens the state database; opening applies pending migrations
func (cli *CLI) openDB() (*storage.DB, error) {
	conf, err := cli.loadConfig()
	if err != nil {
		return nil, err
	}
	dbPath := conf.Storage.DatabasePath
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := storage.Open(dbPath, createCLILogger(conf.Observability.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func printMigrations(ctx context.Context, db *storage.DB) error {
	statuses, err := db.Migrations(ctx)
	if err != nil {
		return err
	}
	for _, m := range statuses {
		state := "pending"
		if m.Applied {
			state = "applied"
		}
		fmt.Printf("%03d_%s  %s\n", m.Version, m.Name, state)
	}
	return nil
}
