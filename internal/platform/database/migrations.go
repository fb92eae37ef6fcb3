package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// MigrationsDir is the repo-relative directory holding the dialect's SQL
// files, used by `migrate -command create`.
func (d Dialect) MigrationsDir() string {
	return "internal/platform/database/migrations/" + string(d)
}

// Migrations returns the embedded migration files for the dialect.
func Migrations(d Dialect) (fs.FS, error) {
	return fs.Sub(migrationsFS, "migrations/"+string(d))
}

func (d Dialect) gooseDialect() (goose.Dialect, error) {
	switch d {
	case Postgres:
		return goose.DialectPostgres, nil
	case MySQL:
		return goose.DialectMySQL, nil
	case SQLite:
		return goose.DialectSQLite3, nil
	}
	return "", fmt.Errorf("no migrations for dialect %q", d)
}

// NewMigrator builds a goose provider over fsys, or over the embedded
// migrations of the dialect when fsys is nil.
func NewMigrator(db *DB, fsys fs.FS) (*goose.Provider, error) {
	dialect, err := db.Dialect.gooseDialect()
	if err != nil {
		return nil, err
	}
	if fsys == nil {
		if fsys, err = Migrations(db.Dialect); err != nil {
			return nil, err
		}
	}
	return goose.NewProvider(dialect, db.DB, fsys)
}

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, db *DB) error {
	provider, err := NewMigrator(db, nil)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, res := range results {
		slog.Info("migration applied", "dialect", db.Dialect, "version", res.Source.Version, "duration_ms", res.Duration.Milliseconds())
	}
	return nil
}
