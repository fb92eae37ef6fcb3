package book

import (
	"errors"

	"bookcatalog/internal/platform/database"
)

// ErrNotFound is the NotFound-class error. It is the store's own sentinel,
// so a propagated P2025 from delete satisfies errors.Is(err, ErrNotFound).
var ErrNotFound = database.ErrRecordNotFound

const (
	MsgNameTaken     = "Name is already taken"
	MsgMissingRecord = "Product doesn't exist"
	MsgNameRequired  = "Name is required"
)

// Kind discriminates the request-level error categories.
type Kind int

const (
	KindUnclassified Kind = iota
	KindNotFound
	KindConflict
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindBadRequest:
		return "bad_request"
	default:
		return "unclassified"
	}
}

// Error is a translated failure carrying its category and a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the category of err. Translated errors keep their own
// kind; untranslated store failures are categorised by their store code.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnclassified
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, database.ErrUniqueConstraint):
		return KindConflict
	}
	return KindUnclassified
}
