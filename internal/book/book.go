package book

import (
	"time"
)

// Author owns books. Authors are provisioned outside this service.
type Author struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Book represents a book entity. ID and timestamps are assigned by the store.
type Book struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Rating    *int      `json:"rating,omitempty"`
	Price     *float64  `json:"price,omitempty"`
	AuthorID  string    `json:"author_id"`
	Author    *Author   `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is a reader. Books holds the user's like records, each with its book.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Books     []Like    `json:"books"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Like is the join record between a user and a book.
type Like struct {
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	Book      *Book     `json:"book,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Input is the writable part of a book. Nil fields are left untouched on
// update; AuthorID is always (re)connected.
type Input struct {
	Name     *string
	Rating   *int
	Price    *float64
	AuthorID string
}
