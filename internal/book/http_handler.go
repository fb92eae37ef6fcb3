package book

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"bookcatalog/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type createBookReq struct {
	Name     *string  `json:"name" validate:"required,notblank,max=255"`
	Rating   *int     `json:"rating" validate:"omitempty,min=0,max=10"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	AuthorID string   `json:"author_id" validate:"required,notblank,max=255"`
}

type updateBookReq struct {
	Name     *string  `json:"name" validate:"omitempty,notblank,max=255"`
	Rating   *int     `json:"rating" validate:"omitempty,min=0,max=10"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	AuthorID string   `json:"author_id" validate:"required,notblank,max=255"`
}

type likeReq struct {
	UserID string `json:"user_id" validate:"required,notblank,max=255"`
}

// List handles GET /books
// @Summary List users with liked books
// @Description Returns every user with their like records, each expanded to the book
// @Tags books
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsersWithBooks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, users, map[string]any{"total": len(users)})
}

// GetByID handles GET /books/{id}
// @Summary Get book
// @Description Get a single book with its author
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [get]
func (h *HTTPHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	book, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if book == nil {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}
	httpx.JSONSuccess(w, r, book, nil)
}

// Delete handles DELETE /books/{id}
// @Summary Delete book
// @Description Deletes a book and returns it as it was
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.DeleteByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, deleted, nil)
}

// Create handles POST /books
// @Summary Create book
// @Tags books
// @Accept json
// @Produce json
// @Param request body createBookReq true "Book"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookReq
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), Input{
		Name:     req.Name,
		Rating:   req.Rating,
		Price:    req.Price,
		AuthorID: req.AuthorID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, created)
}

// Update handles PUT /books/{id}
// @Summary Update book
// @Tags books
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param request body updateBookReq true "Fields to change"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateBookReq
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.service.UpdateByID(r.Context(), id, Input{
		Name:     req.Name,
		Rating:   req.Rating,
		Price:    req.Price,
		AuthorID: req.AuthorID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, updated, nil)
}

// Like handles POST /books/{id}/like
// @Summary Like book
// @Tags books
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param request body likeReq true "User liking the book"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id}/like [post]
func (h *HTTPHandler) Like(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req likeReq
	if !decodeAndValidate(w, r, &req) {
		return
	}

	liked, err := h.service.Like(r.Context(), id, req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, liked, nil)
}

// pathID returns the {id} segment. Ids are opaque strings; unknown ones
// reach the store and come back as NotFound.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if strings.TrimSpace(id) == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input",
			[]httpx.ErrorDetail{{Field: "id", Message: "id is required"}})
		return "", false
	}
	return id, true
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
			return false
		}
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return false
	}
	if details := httpx.ValidateStruct(dst); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	message := ""
	var e *Error
	if errors.As(err, &e) {
		message = e.Message
	}

	switch KindOf(err) {
	case KindBadRequest:
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", message, nil)
	case KindConflict:
		if message == "" {
			message = "Resource already exists"
		}
		httpx.JSONError(w, r, http.StatusConflict, "CONFLICT", message, nil)
	case KindNotFound:
		if message == "" {
			message = "Resource not found"
		}
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", message, nil)
	default:
		slog.Error("book request failed", "method", r.Method, "path", r.URL.Path, "request_id", httpx.RequestIDFrom(r), "error", err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
