package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"appsuite-backend/internal/logger"
	"appsuite-backend/internal/service"
)

const maxBodyBytes = 1 << 20

var errBadBody = errors.New("request body must be a JSON object")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a JSON object body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errBadBody
	}
	return nil
}

var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrEmailRequired, http.StatusBadRequest},
	{service.ErrInvalidEmail, http.StatusBadRequest},
	{service.ErrInvalidStatus, http.StatusBadRequest},
	{service.ErrMessageRequired, http.StatusBadRequest},
	{service.ErrMissingFields, http.StatusBadRequest},
	{service.ErrCredentialsRequired, http.StatusBadRequest},
	{service.ErrUnknownCreator, http.StatusBadRequest},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrEntryNotFound, http.StatusNotFound},
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrDuplicateEmail, http.StatusConflict},
	{service.ErrEmailTaken, http.StatusConflict},
	{service.ErrPhoneTaken, http.StatusConflict},
	{service.ErrDuplicateUser, http.StatusConflict},
	{service.ErrNotificationFailed, http.StatusInternalServerError},
}

// writeServiceError maps service sentinels to status codes. Anything else is
// logged and answered with a generic 500 so internals never reach the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
			}
			writeError(w, m.status, m.err.Error())
			return
		}
	}
	logger.ErrorContext(r.Context(), "Unhandled error", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
