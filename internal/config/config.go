package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Backend names accepted by STORE_BACKEND.
const (
	BackendCloud = "cloud"
	BackendLocal = "local"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Batchbook"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"batchbook"`
	}

	Store struct {
		Backend   string `envconfig:"STORE_BACKEND" default:"cloud"`
		LocalPath string `envconfig:"LOCAL_DB_PATH" default:"./data/local"`
	}

	Redis struct {
		// Optional. Enables cross-instance live updates and the migration lock.
		URL string `envconfig:"REDIS_URL"`
	}

	Auth struct {
		Secret            string        `envconfig:"AUTH_SECRET" default:"change-me"`
		OwnerEmail        string        `envconfig:"OWNER_EMAIL"`
		OwnerPasswordHash string        `envconfig:"OWNER_PASSWORD_HASH"`
		TokenTTL          time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// LogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	return slog.LevelInfo
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.Store.Backend {
	case BackendCloud, BackendLocal:
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	return &cfg, nil
}
