package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"bookcatalog/internal/config"
	"bookcatalog/internal/platform/database"

	"github.com/pressly/goose/v3"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := run(context.Background(), *command, *name); err != nil {
		slog.Error("migrate failed", "command", *command, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command, name string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if command == "create" {
		if name == "" {
			return fmt.Errorf("name is required for 'create' command")
		}
		goose.SetSequential(true)
		dir := migrationsDir(cfg.Dialect)
		if err := goose.Create(nil, dir, name, "sql"); err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		slog.Info("migration created", "name", name, "dir", dir)
		return nil
	}

	db, err := database.Open(ctx, cfg.Dialect, cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := database.NewMigrator(db, migrationsFS())
	if err != nil {
		return err
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		for _, res := range results {
			slog.Info("migration applied", "version", res.Source.Version, "path", res.Source.Path)
		}
		slog.Info("migrations applied successfully", "count", len(results))
	case "down":
		res, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("rollback migration: %w", err)
		}
		slog.Info("migration rolled back", "version", res.Source.Version, "path", res.Source.Path)
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("check migration status: %w", err)
		}
		for _, st := range statuses {
			slog.Info("migration", "version", st.Source.Version, "path", st.Source.Path, "state", st.State, "applied_at", st.AppliedAt)
		}
	default:
		return fmt.Errorf("unknown command: %s. Use: up, down, status, create", command)
	}
	return nil
}
