package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bookcatalog/internal/platform/database"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const defaultQueryTimeout = 3 * time.Second

var bookColumns = []string{
	"b.id", "b.name", "b.rating", "b.price", "b.author_id", "b.created_at", "b.updated_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

// SQLRepo implements Repository on any of the database dialects.
type SQLRepo struct {
	db      *sql.DB
	sq      squirrel.StatementBuilderType
	timeout time.Duration
}

// NewSQLRepo builds a repository on db. A non-positive timeout selects the
// default per-call timeout.
func NewSQLRepo(db *database.DB, timeout time.Duration) *SQLRepo {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &SQLRepo{db: db.DB, sq: db.Builder(), timeout: timeout}
}

func (r *SQLRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// ListUsersWithBooks loads users, then their likes joined to books in one
// query, and groups the likes by user.
func (r *SQLRepo) ListUsersWithBooks(ctx context.Context) ([]User, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	query, args, err := r.sq.Select("id", "email", "created_at", "updated_at").
		From("users").
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, err
	}
	users, err := collect(timeoutCtx, r.db, query, args, func(row rowScanner) (User, error) {
		var u User
		err := row.Scan(&u.ID, &u.Email, &u.CreatedAt, &u.UpdatedAt)
		return u, err
	})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return []User{}, nil
	}

	userIDs := lo.Map(users, func(u User, _ int) string { return u.ID })
	query, args, err = r.sq.Select(append([]string{"ub.user_id", "ub.book_id", "ub.created_at"}, bookColumns...)...).
		From("user_books ub").
		Join("books b ON b.id = ub.book_id").
		Where(squirrel.Eq{"ub.user_id": userIDs}).
		OrderBy("ub.created_at", "b.name").
		ToSql()
	if err != nil {
		return nil, err
	}
	likes, err := collect(timeoutCtx, r.db, query, args, func(row rowScanner) (Like, error) {
		var (
			l Like
			b Book
		)
		err := row.Scan(&l.UserID, &l.BookID, &l.CreatedAt,
			&b.ID, &b.Name, &b.Rating, &b.Price, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt)
		l.Book = &b
		return l, err
	})
	if err != nil {
		return nil, err
	}

	byUser := lo.GroupBy(likes, func(l Like) string { return l.UserID })
	for i := range users {
		users[i].Books = byUser[users[i].ID]
		if users[i].Books == nil {
			users[i].Books = []Like{}
		}
	}
	return users, nil
}

// FindByID returns the book joined with its author, or nil when absent.
func (r *SQLRepo) FindByID(ctx context.Context, id string) (*Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	query, args, err := r.sq.Select(append(bookColumns, "a.id", "a.name", "a.created_at", "a.updated_at")...).
		From("books b").
		Join("authors a ON a.id = b.author_id").
		Where(squirrel.Eq{"b.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var (
		b Book
		a Author
	)
	err = r.db.QueryRowContext(timeoutCtx, query, args...).Scan(
		&b.ID, &b.Name, &b.Rating, &b.Price, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt,
		&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	b.Author = &a
	return &b, nil
}

// Delete removes the book and returns the row read just before removal.
func (r *SQLRepo) Delete(ctx context.Context, id string) (Book, error) {
	var prior Book
	err := r.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		if prior, err = r.getBook(ctx, tx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return database.NotFound("delete book")
			}
			return err
		}
		query, args, err := r.sq.Delete("books").Where(squirrel.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		return nil
	})
	if err != nil {
		return Book{}, err
	}
	return prior, nil
}

// Create inserts a book under a fresh id and re-reads it in the same tx.
func (r *SQLRepo) Create(ctx context.Context, in Input) (Book, error) {
	var created Book
	err := r.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		id := uuid.NewString()
		query, args, err := r.sq.Insert("books").
			Columns("id", "name", "rating", "price", "author_id").
			Values(id, lo.FromPtr(in.Name), in.Rating, in.Price, in.AuthorID).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert book: %w", err)
		}
		created, err = r.getBook(ctx, tx, id)
		return err
	})
	if err != nil {
		return Book{}, err
	}
	return created, nil
}

// Update sets author_id and the non-nil fields of in.
func (r *SQLRepo) Update(ctx context.Context, id string, in Input) (Book, error) {
	var updated Book
	err := r.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		upd := r.sq.Update("books").
			Set("author_id", in.AuthorID).
			Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
			Where(squirrel.Eq{"id": id})
		if in.Name != nil {
			upd = upd.Set("name", *in.Name)
		}
		if in.Rating != nil {
			upd = upd.Set("rating", *in.Rating)
		}
		if in.Price != nil {
			upd = upd.Set("price", *in.Price)
		}
		query, args, err := upd.ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update book: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return database.NotFound("update book")
		}
		updated, err = r.getBook(ctx, tx, id)
		return err
	})
	if err != nil {
		return Book{}, err
	}
	return updated, nil
}

// CreateLike inserts the user_books row and touches the book's updated_at.
func (r *SQLRepo) CreateLike(ctx context.Context, bookID, userID string) (Book, error) {
	var liked Book
	err := r.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		query, args, err := r.sq.Insert("user_books").
			Columns("user_id", "book_id").
			Values(userID, bookID).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert like: %w", err)
		}

		query, args, err = r.sq.Update("books").
			Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
			Where(squirrel.Eq{"id": bookID}).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("touch book: %w", err)
		}
		liked, err = r.getBook(ctx, tx, bookID)
		return err
	})
	if err != nil {
		return Book{}, err
	}
	return liked, nil
}

func (r *SQLRepo) getBook(ctx context.Context, tx *sql.Tx, id string) (Book, error) {
	query, args, err := r.sq.Select(bookColumns...).
		From("books b").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return Book{}, err
	}
	var b Book
	err = tx.QueryRowContext(ctx, query, args...).Scan(
		&b.ID, &b.Name, &b.Rating, &b.Price, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// inTx runs fn in a transaction bounded by the repo timeout. Errors leave
// the transaction rolled back and are classified into store codes.
func (r *SQLRepo) inTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(timeoutCtx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(timeoutCtx, tx); err != nil {
		return database.Classify(err)
	}
	return database.Classify(tx.Commit())
}

func collect[T any](ctx context.Context, db *sql.DB, query string, args []any, scan func(rowScanner) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
