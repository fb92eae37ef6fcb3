package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage. Every method is a
// single store call; failures carry database store codes.
type Repository interface {
	// ListUsersWithBooks returns every user with its like records expanded to books.
	ListUsersWithBooks(ctx context.Context) ([]User, error)
	// FindByID returns the book with its author, or nil when there is none.
	FindByID(ctx context.Context, id string) (*Book, error)
	// Delete removes the book and returns the row as it was.
	Delete(ctx context.Context, id string) (Book, error)
	// Create inserts a book connected to in.AuthorID.
	Create(ctx context.Context, in Input) (Book, error)
	// Update applies the supplied fields and reconnects in.AuthorID.
	Update(ctx context.Context, id string, in Input) (Book, error)
	// CreateLike adds the user to the book's likes and returns the book.
	CreateLike(ctx context.Context, bookID, userID string) (Book, error)
}
