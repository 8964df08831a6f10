package http

import (
	"net/http"
	"sort"

	"appsuite-backend/internal/registry"
)

// UsersHandler serves a fixed demo directory
type UsersHandler struct {
	directory map[int64]string
}

func NewUsersHandler() *UsersHandler {
	return &UsersHandler{directory: map[int64]string{1: "Alice", 2: "Bob", 3: "Charlie"}}
}

func (h *UsersHandler) Routes() []registry.Route {
	return []registry.Route{
		{Name: "users.list", Method: http.MethodGet, Path: "/list", Handler: h.List, Description: "Fetch all users"},
		{Name: "users.get", Method: http.MethodGet, Path: "/{id:[0-9]+}", Handler: h.Get, Description: "Get a single user by ID"},
	}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	ids := make([]int64, 0, len(h.directory))
	for id := range h.directory {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, h.directory[id])
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": names})
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	name, found := h.directory[id]
	if !found {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": id, "name": name}})
}
