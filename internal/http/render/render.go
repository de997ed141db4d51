// Package render writes JSON responses and maps service errors onto status
// codes for every handler.
package render

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
	"github.com/MrJamesThe3rd/batchbook/internal/migration"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
	"github.com/MrJamesThe3rd/batchbook/internal/validation"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type validationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// Error reports err with the status its kind calls for. Unknown errors are
// logged and hidden behind a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := validation.As(err); ok {
		JSON(w, http.StatusUnprocessableEntity, validationResponse{Error: "validation failed", Fields: verr.Fields})
		return
	}

	switch {
	case errors.Is(err, batch.ErrNotFound),
		errors.Is(err, sale.ErrNotFound),
		errors.Is(err, ledger.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, migration.ErrAlreadyRunning):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// DecodeJSON reads the request body into v, answering 400 on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}

	return true
}

// DateParam parses an optional YYYY-MM-DD query parameter. Malformed values
// are ignored.
func DateParam(r *http.Request, name string) *time.Time {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}

	return &t
}

// IntParam parses an optional integer query parameter, falling back to def.
func IntParam(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}

	return n
}
