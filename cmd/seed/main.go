package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/platform/database"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var authorNames = []string{
	"J.R.R. Tolkien", "Ursula K. Le Guin", "Terry Pratchett", "Octavia E. Butler",
	"Isaac Asimov", "Mary Shelley", "Italo Calvino", "Toni Morrison",
}

func main() {
	var (
		users   = flag.Int("users", 5, "Number of users to create")
		books   = flag.Int("books", 20, "Number of books to create")
		migrate = flag.Bool("migrate", true, "Apply pending migrations first")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := run(context.Background(), *users, *books, *migrate); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, userCount, bookCount int, migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.Open(ctx, cfg.Dialect, cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}
	return seed(ctx, db, cfg.QueryTimeout, userCount, bookCount)
}

func seed(ctx context.Context, db *database.DB, timeout time.Duration, userCount, bookCount int) error {
	authorIDs, err := seedAuthors(ctx, db)
	if err != nil {
		return err
	}
	if len(authorIDs) == 0 {
		return errors.New("no authors available")
	}

	userIDs := make([]string, 0, userCount)
	for i := 0; i < userCount; i++ {
		id := uuid.NewString()
		created, err := insertIgnoringDuplicate(ctx, db, "users", []string{"id", "email"}, id, fmt.Sprintf("reader%d@example.com", i+1))
		if err != nil {
			return err
		}
		if created {
			userIDs = append(userIDs, id)
		}
	}
	slog.Info("users seeded", "created", len(userIDs))

	service := book.NewService(book.NewSQLRepo(db, timeout))
	var created []book.Book
	for i := 0; i < bookCount; i++ {
		b, err := service.Create(ctx, book.Input{
			Name:     lo.ToPtr(fmt.Sprintf("%s %d", getRandomWord(), i+1)),
			Rating:   lo.ToPtr(rand.Intn(11)),
			Price:    lo.ToPtr(float64(500+rand.Intn(4500)) / 100),
			AuthorID: lo.Sample(authorIDs),
		})
		if book.KindOf(err) == book.KindConflict {
			continue
		}
		if err != nil {
			return fmt.Errorf("create book: %w", err)
		}
		created = append(created, b)
	}
	slog.Info("books seeded", "created", len(created))

	likes := 0
	for _, userID := range userIDs {
		for _, b := range lo.Samples(created, rand.Intn(4)) {
			if _, err := service.Like(ctx, b.ID, userID); err != nil {
				return fmt.Errorf("like book: %w", err)
			}
			likes++
		}
	}
	slog.Info("likes seeded", "created", likes)
	return nil
}

func seedAuthors(ctx context.Context, db *database.DB) ([]string, error) {
	for _, name := range authorNames {
		if _, err := insertIgnoringDuplicate(ctx, db, "authors", []string{"id", "name"}, uuid.NewString(), name); err != nil {
			return nil, err
		}
	}

	query, args, err := db.Builder().Select("id").From("authors").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	slog.Info("authors available", "count", len(ids))
	return ids, rows.Err()
}

// insertIgnoringDuplicate reports false when a unique constraint already
// holds the row.
func insertIgnoringDuplicate(ctx context.Context, db *database.DB, table string, columns []string, values ...any) (bool, error) {
	query, args, err := db.Builder().Insert(table).Columns(columns...).Values(values...).ToSql()
	if err != nil {
		return false, err
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		if errors.Is(database.Classify(err), database.ErrUniqueConstraint) {
			return false, nil
		}
		return false, fmt.Errorf("insert into %s: %w", table, err)
	}
	return true, nil
}

func getRandomWord() string {
	words := []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
	return words[rand.Intn(len(words))]
}
