package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/batchbook/internal/app"
	"github.com/MrJamesThe3rd/batchbook/internal/auth"
	batchbookHttp "github.com/MrJamesThe3rd/batchbook/internal/http"
	authHandler "github.com/MrJamesThe3rd/batchbook/internal/http/auth"
	backupHandler "github.com/MrJamesThe3rd/batchbook/internal/http/backup"
	batchHandler "github.com/MrJamesThe3rd/batchbook/internal/http/batch"
	ledgerHandler "github.com/MrJamesThe3rd/batchbook/internal/http/ledger"
	migrationHandler "github.com/MrJamesThe3rd/batchbook/internal/http/migration"
	reportHandler "github.com/MrJamesThe3rd/batchbook/internal/http/report"
	saleHandler "github.com/MrJamesThe3rd/batchbook/internal/http/sale"
	streamHandler "github.com/MrJamesThe3rd/batchbook/internal/http/stream"
	"github.com/MrJamesThe3rd/batchbook/internal/live"
	"github.com/MrJamesThe3rd/batchbook/internal/localdb"
)

const (
	ownerEmail    = "owner@example.com"
	ownerPassword = "s3cret-pass"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := localdb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hub := live.NewHub()
	svc := app.NewServices(app.LocalStores(db), hub)

	hash, err := auth.HashPassword(ownerPassword)
	require.NoError(t, err)

	authSvc := auth.NewService(auth.Config{
		Secret:            "test-secret",
		OwnerEmail:        ownerEmail,
		OwnerPasswordHash: hash,
		TokenTTL:          time.Hour,
	})

	var (
		batchH  = batchHandler.NewHandler(svc.Batches, svc.Sales)
		saleH   = saleHandler.NewHandler(svc.Sales, svc.Batches)
		ledgerH = ledgerHandler.NewHandler(svc.Ledger, svc.Matching, svc.Parser)
	)

	router := batchbookHttp.New(authSvc, batchbookHttp.Handlers{
		Auth:      authHandler.NewHandler(authSvc),
		Batches:   batchH,
		Sales:     saleH,
		Ledger:    ledgerH,
		Backup:    backupHandler.NewHandler(svc.Backup),
		Migration: migrationHandler.NewHandler(nil),
		Reports:   reportHandler.NewHandler(svc.Reports),
		Stream: streamHandler.NewHandler(hub, map[live.Kind]streamHandler.Snapshot{
			live.KindBatches:  batchH.Snapshot,
			live.KindSales:    saleH.Snapshot,
			live.KindExpenses: ledgerH.Snapshot,
		}),
	}, batchbookHttp.Options{Timeout: 5 * time.Second})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	resp := do(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    ownerEmail,
		"password": ownerPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)

	return out.Token
}

func TestRouter_RequiresAuth(t *testing.T) {
	srv := newServer(t)

	resp := do(t, srv, http.MethodGet, "/api/v1/batches", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    ownerEmail,
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_BatchAndSaleFlow(t *testing.T) {
	srv := newServer(t)
	token := login(t, srv)

	resp := do(t, srv, http.MethodGet, "/api/v1/auth/session", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/v1/batches", token, map[string]any{
		"name":       "Lawn",
		"target_qty": 10,
		"costs": []map[string]any{
			{"name": "Fabric", "rate": "100", "qty": "4", "type": "FIXED"},
			{"name": "Stitching", "rate": "10", "qty": "1", "type": "PER_UNIT"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID       string          `json:"id"`
		UnitCost decimal.Decimal `json:"unit_cost"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.True(t, decimal.NewFromInt(50).Equal(created.UnitCost))

	resp = do(t, srv, http.MethodGet, "/api/v1/sales/suggest?batch_id="+created.ID+"&qty=2", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var suggestion struct {
		Amount decimal.Decimal `json:"amount"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&suggestion))
	assert.True(t, decimal.NewFromInt(150).Equal(suggestion.Amount))

	resp = do(t, srv, http.MethodGet, "/api/v1/batches/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/v1/batches", token, map[string]any{"name": "", "target_qty": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/batches", strings.NewReader("name=Lawn"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err = srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestRouter_MigrationUnavailable(t *testing.T) {
	srv := newServer(t)
	token := login(t, srv)

	resp := do(t, srv, http.MethodPost, "/api/v1/migration/run", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
