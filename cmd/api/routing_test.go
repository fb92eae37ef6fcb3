package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/platform/database"
	"bookcatalog/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestServer(t *testing.T) (http.Handler, *database.DB) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	db, err := database.Open(ctx, database.SQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, database.Migrate(ctx, db))

	handler := book.NewHTTPHandler(book.NewService(book.NewSQLRepo(db, 0)))
	cfg := config.Config{RateLimitRPS: 1000, RateLimitBurst: 1000, MaxBodyBytes: 1 << 20}
	return newHandler(ctx, cfg, newRouter(handler, db)), db
}

func serve(h http.Handler, method, path string, body interface{}) testutil.RecordResponse {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, testutil.NewRequest(method, path, body))
	return testutil.RecordHTTPResponse(w)
}

func TestRouting_BookLifecycle(t *testing.T) {
	h, db := newTestServer(t)
	ctx := context.Background()

	for _, q := range []string{
		"INSERT INTO authors (id, name) VALUES ('" + testutil.AuthorID + "', 'J.R.R. Tolkien')",
		"INSERT INTO users (id, email) VALUES ('" + testutil.UserID + "', 'reader@example.com')",
	} {
		_, err := db.ExecContext(ctx, q)
		require.NoError(t, err)
	}

	created := serve(h, http.MethodPost, "/books", map[string]interface{}{
		"name": "The Hobbit", "rating": 5, "author_id": testutil.AuthorID,
	})
	require.Equal(t, http.StatusCreated, created.Code)
	assert.NotEmpty(t, created.Header.Get("X-Request-Id"))
	id, _ := created.Data()["id"].(string)
	require.NotEmpty(t, id)

	dup := serve(h, http.MethodPost, "/books", map[string]interface{}{
		"name": "The Hobbit", "author_id": testutil.AuthorID,
	})
	assert.Equal(t, http.StatusConflict, dup.Code)
	assert.Equal(t, "Name is already taken", dup.ErrorMessage())

	noAuthor := serve(h, http.MethodPost, "/books", map[string]interface{}{
		"name": "Silmarillion", "author_id": uuid.NewString(),
	})
	assert.Equal(t, http.StatusBadRequest, noAuthor.Code)
	assert.Equal(t, "Product doesn't exist", noAuthor.ErrorMessage())

	got := serve(h, http.MethodGet, "/books/"+id, nil)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, "J.R.R. Tolkien", got.Data()["author"].(map[string]interface{})["name"])

	updated := serve(h, http.MethodPut, "/books/"+id, map[string]interface{}{
		"price": 12.5, "author_id": testutil.AuthorID,
	})
	require.Equal(t, http.StatusOK, updated.Code)
	assert.Equal(t, "The Hobbit", updated.Data()["name"])
	assert.Equal(t, 12.5, updated.Data()["price"])

	liked := serve(h, http.MethodPost, "/books/"+id+"/like", map[string]interface{}{"user_id": testutil.UserID})
	require.Equal(t, http.StatusOK, liked.Code)

	again := serve(h, http.MethodPost, "/books/"+id+"/like", map[string]interface{}{"user_id": testutil.UserID})
	assert.Equal(t, http.StatusConflict, again.Code)

	list := serve(h, http.MethodGet, "/books", nil)
	require.Equal(t, http.StatusOK, list.Code)
	users := list.Body["data"].([]interface{})
	require.Len(t, users, 1)
	assert.Len(t, users[0].(map[string]interface{})["books"], 1)

	deleted := serve(h, http.MethodDelete, "/books/"+id, nil)
	require.Equal(t, http.StatusOK, deleted.Code)
	assert.Equal(t, id, deleted.Data()["id"])

	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/books/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodDelete, "/books/"+id, nil).Code)
}

func TestRouting_RejectsBadInput(t *testing.T) {
	h, _ := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodPost, "/books", `{"name":`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodPatch, "/books/"+testutil.BookID, nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/authors", nil).Code)
}

func TestRouting_OpaqueIDs(t *testing.T) {
	h, _ := newTestServer(t)

	got := serve(h, http.MethodGet, "/books/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, got.Code)

	deleted := serve(h, http.MethodDelete, "/books/nonexistent-id", nil)
	assert.Equal(t, http.StatusNotFound, deleted.Code)
	assert.Equal(t, "NOT_FOUND", deleted.ErrorCode())

	created := serve(h, http.MethodPost, "/books", map[string]interface{}{
		"name": "The Hobbit", "author_id": "nonexistent-id",
	})
	assert.Equal(t, http.StatusBadRequest, created.Code)
	assert.Equal(t, "BAD_REQUEST", created.ErrorCode())
	assert.Equal(t, "Product doesn't exist", created.ErrorMessage())

	liked := serve(h, http.MethodPost, "/books/nonexistent-id/like", map[string]interface{}{"user_id": "nobody"})
	assert.Equal(t, http.StatusNotFound, liked.Code)
}

func TestRouting_HealthChecks(t *testing.T) {
	handler := book.NewHTTPHandler(nil)

	w := httptest.NewRecorder()
	newRouter(handler, stubPinger{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	newRouter(handler, stubPinger{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	newRouter(handler, stubPinger{err: errors.New("down")}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
