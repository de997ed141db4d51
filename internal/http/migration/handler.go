package migration

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/batchbook/internal/http/render"
	"github.com/MrJamesThe3rd/batchbook/internal/migration"
)

type Handler struct {
	migrator *migration.Migrator
}

// NewHandler accepts a nil migrator when no local store is configured.
func NewHandler(migrator *migration.Migrator) *Handler {
	return &Handler{migrator: migrator}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/run", h.run)
}

type failedResponse struct {
	Error  string            `json:"error"`
	Report *migration.Report `json:"report"`
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	if h.migrator == nil {
		http.Error(w, "migration is not available for this backend", http.StatusNotFound)
		return
	}

	m := h.migrator
	if r.URL.Query().Get("dry_run") == "true" {
		m = m.WithOptions(migration.Options{DryRun: true})
	}

	report, err := m.Run(r.Context())
	if err != nil {
		if errors.Is(err, migration.ErrAlreadyRunning) || report == nil {
			render.Error(w, r, err)
			return
		}

		slog.Error("migration failed", "error", err)
		render.JSON(w, http.StatusInternalServerError, failedResponse{Error: err.Error(), Report: report})

		return
	}

	render.JSON(w, http.StatusOK, report)
}
