package main

import (
	"io/fs"
	"os"

	"bookcatalog/internal/platform/database"
)

// migrationsDir is where `create` writes new files for the dialect.
func migrationsDir(d database.Dialect) string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return d.MigrationsDir()
}

// migrationsFS returns an on-disk override when MIGRATIONS_DIR is set, and
// nil otherwise so the embedded migrations are used.
func migrationsFS() fs.FS {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return os.DirFS(v)
	}
	return nil
}
