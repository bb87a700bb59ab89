package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pressly/goose/v3"

	"github.com/osse101/FateProtocol_Go/internal/database"
)

type MigrateCommand struct{}

func (c *MigrateCommand) Name() string {
	return "migrate"
}

func (c *MigrateCommand) Description() string {
	return "Manage database migrations (up, status, create)"
}

func (c *MigrateCommand) Run(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("subcommand required: up, status, create")
	}

	switch args[0] {
	case "create":
		// File generation only, no DB connection needed
		if len(args) < 2 {
			return fmt.Errorf("migration name required for create")
		}
		migrationType := "sql"
		if len(args) > 2 {
			migrationType = args[2]
		}
		return runCommandVerbose("go", "run", "github.com/pressly/goose/v3/cmd/goose",
			"-dir", "migrations", "create", args[1], migrationType)
	case "up":
		return c.up()
	case "status":
		return c.status()
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// up applies the migrations embedded in the binary, exactly as the server does on start
func (c *MigrateCommand) up() error {
	ctx := context.Background()
	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	PrintHeader("Applying migrations")
	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}
	PrintSuccess("Database is up to date")
	return nil
}

func (c *MigrateCommand) status() error {
	ctx := context.Background()
	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	statuses, err := database.MigrationStatus(ctx, pool)
	if err != nil {
		return err
	}

	PrintHeader("Migration status")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Version", "File", "State", "Applied At")
	for _, s := range statuses {
		applied := "-"
		if !s.AppliedAt.IsZero() {
			applied = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		_ = table.Append(fmt.Sprintf("%d", s.Source.Version), s.Source.Path, string(s.State), applied)
	}
	_ = table.Render()

	if pending := countPending(statuses); pending > 0 {
		PrintWarning("%d pending migration(s), run: devtool migrate up", pending)
	} else {
		PrintSuccess("All migrations applied")
	}
	return nil
}

// pendingMigrations fails while the database is behind the embedded migrations
func pendingMigrations() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	statuses, err := database.MigrationStatus(ctx, pool)
	if err != nil {
		return err
	}
	if n := countPending(statuses); n > 0 {
		return fmt.Errorf("%d pending migration(s), run: devtool migrate up", n)
	}
	PrintSuccess("All migrations applied")
	return nil
}

func countPending(statuses []*goose.MigrationStatus) int {
	n := 0
	for _, s := range statuses {
		if s.State == goose.StatePending {
			n++
		}
	}
	return n
}
