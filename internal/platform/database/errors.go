package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Code is the store's error vocabulary, independent of the SQL engine.
type Code string

const (
	// CodeUniqueConstraint: a unique constraint rejected the write.
	CodeUniqueConstraint Code = "P2002"
	// CodeRecordNotFound: a record required by the operation does not exist,
	// either the target row or a related row it must connect to.
	CodeRecordNotFound Code = "P2025"
)

var (
	ErrUniqueConstraint = errors.New("unique constraint violation")
	ErrRecordNotFound   = errors.New("record not found")
)

// Error is a classified store failure.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets callers test for the code sentinels with errors.Is.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUniqueConstraint:
		return e.Code == CodeUniqueConstraint
	case ErrRecordNotFound:
		return e.Code == CodeRecordNotFound
	}
	return false
}

// NotFound builds the error returned when an update or delete matched no row.
func NotFound(what string) error {
	return &Error{Code: CodeRecordNotFound, Err: fmt.Errorf("%s: no matching record", what)}
}

// CodeOf returns the store code carried by err, or "" when err is unclassified.
func CodeOf(err error) Code {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Code
	}
	return ""
}

// Classify maps driver errors onto store codes. Errors that match no code
// are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var storeErr *Error
	if errors.As(err, &storeErr) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return &Error{Code: CodeRecordNotFound, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return &Error{Code: CodeUniqueConstraint, Err: err}
		case "23503":
			return &Error{Code: CodeRecordNotFound, Err: err}
		}
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return &Error{Code: CodeUniqueConstraint, Err: err}
		case 1216, 1452:
			return &Error{Code: CodeRecordNotFound, Err: err}
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &Error{Code: CodeUniqueConstraint, Err: err}
		case sqlite3.ErrConstraintForeignKey:
			return &Error{Code: CodeRecordNotFound, Err: err}
		}
		return err
	}

	return err
}
