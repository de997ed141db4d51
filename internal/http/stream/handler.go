// Package stream serves live snapshots of a collection as Server-Sent
// Events. Each change notification re-lists the collection and sends it
// whole.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/batchbook/internal/live"
)

const defaultHeartbeat = 25 * time.Second

// Snapshot lists a collection in its API shape.
type Snapshot func(ctx context.Context) (any, error)

type Handler struct {
	hub       *live.Hub
	snapshots map[live.Kind]Snapshot
	heartbeat time.Duration
}

func NewHandler(hub *live.Hub, snapshots map[live.Kind]Snapshot) *Handler {
	return &Handler{hub: hub, snapshots: snapshots, heartbeat: defaultHeartbeat}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{kind}", h.stream)
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	kind := live.Kind(chi.URLParam(r, "kind"))

	snapshot, ok := h.snapshots[kind]
	if !kind.Valid() || !ok {
		http.Error(w, "unknown stream", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Subscribe before the first snapshot so no change is missed in between.
	changes, cancel := h.hub.Subscribe(kind)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()

	if err := send(ctx, w, snapshot); err != nil {
		slog.Warn("stream closed", "kind", kind, "error", err)
		return
	}

	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, open := <-changes:
			if !open {
				return
			}

			if err := send(ctx, w, snapshot); err != nil {
				slog.Warn("stream closed", "kind", kind, "error", err)
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}

		flusher.Flush()
	}
}

// send writes one snapshot event. A failed listing is reported to the
// client as an error event and the stream stays open.
func send(ctx context.Context, w http.ResponseWriter, snapshot Snapshot) error {
	data, err := snapshot(ctx)
	if err != nil {
		slog.Error("failed to build snapshot", "error", err)
		_, werr := fmt.Fprint(w, "event: error\ndata: {\"error\":\"snapshot failed\"}\n\n")

		return werr
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	_, err = fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", raw)

	return err
}
