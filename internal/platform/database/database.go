package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// Dialect names the SQL engine behind a DB. Values match goose dialect names
// and the migrations/<dialect> directories.
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite3"
)

// ParseDialect accepts the driver names used in DB_DRIVER.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", s)
	}
}

// Builder returns a squirrel builder using the dialect's bind variables.
func (d Dialect) Builder() squirrel.StatementBuilderType {
	if d == Postgres {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

// DB is the relational store handle shared by the repositories.
type DB struct {
	*sql.DB
	Dialect Dialect

	pool *pgxpool.Pool
}

// Open connects to the store and verifies the connection with a ping.
func Open(ctx context.Context, dialect Dialect, dsn string) (*DB, error) {
	db := &DB{Dialect: dialect}

	switch dialect {
	case Postgres:
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("create db pool: %w", err)
		}
		db.pool = pool
		db.DB = stdlib.OpenDBFromPool(pool)
	case MySQL:
		normalized, err := mysqlDSN(dsn)
		if err != nil {
			return nil, err
		}
		conn, err := sql.Open("mysql", normalized)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		conn.SetMaxOpenConns(100)
		conn.SetMaxIdleConns(10)
		conn.SetConnMaxLifetime(time.Hour)
		db.DB = conn
	case SQLite:
		conn, err := sql.Open("sqlite3", sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// sqlite serialises writers; one connection also keeps in-memory
		// databases alive for the lifetime of the handle.
		conn.SetMaxOpenConns(1)
		db.DB = conn
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database (%s): %w", RedactDSN(dsn), err)
	}
	return db, nil
}

// Ping checks the store is reachable, going through the pgx pool when there is one.
func (db *DB) Ping(ctx context.Context) error {
	if db.pool != nil {
		return db.pool.Ping(ctx)
	}
	return db.DB.PingContext(ctx)
}

// Builder returns a statement builder for the store's dialect.
func (db *DB) Builder() squirrel.StatementBuilderType {
	return db.Dialect.Builder()
}

func (db *DB) Close() {
	if db.DB != nil {
		_ = db.DB.Close()
	}
	if db.pool != nil {
		db.pool.Close()
	}
}

// mysqlDSN forces the options the repositories rely on: DATETIME columns
// scan into time.Time, and UPDATE reports matched rather than changed rows.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// sqliteDSN turns on foreign key enforcement, which sqlite leaves off by default.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=1"
}

// RedactDSN hides credentials in URL-style DSNs before they are logged.
func RedactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
