package config_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/batchbook/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, config.BackendCloud, cfg.Store.Backend)
	assert.Equal(t, "postgres://postgres:@localhost:5432/batchbook?sslmode=disable", cfg.ConnectionString())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "local")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.BackendLocal, cfg.Store.Backend)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "firestore")

	_, err := config.Load()
	assert.Error(t, err)
}
