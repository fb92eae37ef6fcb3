package book

import (
	"context"
	"strings"

	"bookcatalog/internal/platform/database"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListUsersWithBooks returns all users, each with the books they like.
func (s *Service) ListUsersWithBooks(ctx context.Context) ([]User, error) {
	return s.repo.ListUsersWithBooks(ctx)
}

// GetByID returns the book with its author. A missing book is (nil, nil).
func (s *Service) GetByID(ctx context.Context, id string) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// DeleteByID deletes a book and returns its prior state.
func (s *Service) DeleteByID(ctx context.Context, id string) (Book, error) {
	return s.repo.Delete(ctx, id)
}

// Create adds a book linked to an existing author. A nil or blank name is
// rejected before the store is called.
func (s *Service) Create(ctx context.Context, in Input) (Book, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return Book{}, &Error{Kind: KindBadRequest, Message: MsgNameRequired}
	}

	created, err := s.repo.Create(ctx, in)
	if err != nil {
		switch database.CodeOf(err) {
		case database.CodeUniqueConstraint:
			return Book{}, &Error{Kind: KindConflict, Message: MsgNameTaken, Err: err}
		case database.CodeRecordNotFound:
			return Book{}, &Error{Kind: KindBadRequest, Message: MsgMissingRecord, Err: err}
		}
		return Book{}, err
	}
	return created, nil
}

// UpdateByID applies in to the book and relinks its author.
func (s *Service) UpdateByID(ctx context.Context, id string, in Input) (Book, error) {
	return s.repo.Update(ctx, id, in)
}

// Like records that userID likes bookID.
func (s *Service) Like(ctx context.Context, bookID, userID string) (Book, error) {
	return s.repo.CreateLike(ctx, bookID, userID)
}
