// Package httpx holds the JSON helpers every handler uses at its boundary.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"rotation-server/internal/apierr"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": ...}. Errors without an explicit status use fallback.
func WriteError(w http.ResponseWriter, err error, fallback int) {
	WriteJSON(w, apierr.StatusOf(err, fallback), ErrorResponse{Error: err.Error()})
}

// DecodeJSON decodes the request body into dst. An empty body is an error.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return apierr.BadRequest("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierr.BadRequest("request body is required")
		}
		return apierr.BadRequest("invalid JSON body: %v", err)
	}
	return nil
}

// ParseID parses a required UUID field, naming it in the error.
func ParseID(field, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, apierr.BadRequest("%s is required", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apierr.BadRequest("%s is not a valid id", field)
	}
	return id, nil
}
