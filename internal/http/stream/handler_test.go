package stream_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/batchbook/internal/http/stream"
	"github.com/MrJamesThe3rd/batchbook/internal/live"
)

func newServer(t *testing.T, hub *live.Hub, snapshot stream.Snapshot) *httptest.Server {
	t.Helper()

	router := chi.NewRouter()
	router.Route("/stream", stream.NewHandler(hub, map[live.Kind]stream.Snapshot{
		live.KindBatches: snapshot,
	}).Routes)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()

	var event, data string

	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)

		line = strings.TrimRight(line, "\n")

		switch {
		case line == "":
			if event != "" {
				return event, data
			}
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestStream_SendsSnapshotOnEveryChange(t *testing.T) {
	hub := live.NewHub()

	var calls atomic.Int32

	srv := newServer(t, hub, func(context.Context) (any, error) {
		n := calls.Add(1)
		return map[string]int32{"version": n}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream/batches", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body := bufio.NewReader(resp.Body)

	event, data := readEvent(t, body)
	assert.Equal(t, "snapshot", event)
	assert.JSONEq(t, `{"version":1}`, data)

	hub.Notify(ctx, live.KindBatches)

	event, data = readEvent(t, body)
	assert.Equal(t, "snapshot", event)
	assert.JSONEq(t, `{"version":2}`, data)
}

func TestStream_UnknownKind(t *testing.T) {
	srv := newServer(t, live.NewHub(), func(context.Context) (any, error) { return nil, nil })

	for _, path := range []string{"/stream/nope", "/stream/sales"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}
