package backup

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/batchbook/internal/backup"
	"github.com/MrJamesThe3rd/batchbook/internal/http/render"
)

const maxBackupSize = 64 << 20

type Handler struct {
	svc *backup.Service
}

func NewHandler(svc *backup.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
	r.Post("/restore", h.restore)
	r.Delete("/", h.clear)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Export(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	filename := fmt.Sprintf("batchbook-backup-%s.json", time.Now().Format(time.DateOnly))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := backup.Write(w, doc); err != nil {
		slog.Error("failed to write backup", "error", err)
	}
}

// body returns the uploaded file, accepting either a multipart "file" field
// or the raw document as the request body.
func body(w http.ResponseWriter, r *http.Request) (io.ReadCloser, error) {
	if err := r.ParseMultipartForm(maxBackupSize); err == nil {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New("file field is required")
		}

		return file, nil
	}

	return http.MaxBytesReader(w, r.Body, maxBackupSize), nil
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	src, err := body(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer src.Close()

	doc, err := backup.Decode(src)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	counts, err := h.svc.Restore(r.Context(), doc)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, counts)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearAll(r.Context()); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
