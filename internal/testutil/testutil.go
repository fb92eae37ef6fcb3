package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"
)

// Fixed ids shared by handler and repository tests.
const (
	AuthorID = "7d6c3c1e-8a51-4c35-9f3e-2f1f5e0b9a01"
	BookID   = "2b0a6f64-43b0-4e3c-a3a1-6f7c0d8e1f22"
	UserID   = "c4e1b7d2-5a3f-4f68-9d0e-8b2a1c3d4e55"
)

// Epoch is a stable timestamp for fixtures.
var Epoch = time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// NewRequest creates a new HTTP request for testing. A string body is sent
// verbatim, anything else is JSON encoded.
func NewRequest(method, path string, body interface{}) *http.Request {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		bodyBytes, _ := json.Marshal(b)
		reader = bytes.NewReader(bodyBytes)
	}

	r := httptest.NewRequest(method, path, reader)
	if reader != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	return r
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// Data returns the "data" object of a success envelope.
func (r RecordResponse) Data() map[string]interface{} {
	data, _ := r.Body["data"].(map[string]interface{})
	return data
}

// ErrorCode returns error.code of an error envelope.
func (r RecordResponse) ErrorCode() string {
	e, _ := r.Body["error"].(map[string]interface{})
	code, _ := e["code"].(string)
	return code
}

// ErrorMessage returns error.message of an error envelope.
func (r RecordResponse) ErrorMessage() string {
	e, _ := r.Body["error"].(map[string]interface{})
	msg, _ := e["message"].(string)
	return msg
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		_ = json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}
