package http_test

import (
	"net/http"
	"testing"

	httpapi "appsuite-backend/internal/api/http"

	"github.com/stretchr/testify/assert"
)

func TestUsersHandler(t *testing.T) {
	router := mount(t, "users", "routes", httpapi.NewUsersHandler())

	rec, body := do(t, router, http.MethodGet, "/users/routes/list", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"Alice", "Bob", "Charlie"}, body["users"])

	rec, body = do(t, router, http.MethodGet, "/users/routes/2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"id": float64(2), "name": "Bob"}, body["user"])

	rec, _ = do(t, router, http.MethodGet, "/users/routes/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
