package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/batchbook/internal/app"
	"github.com/MrJamesThe3rd/batchbook/internal/auth"
	"github.com/MrJamesThe3rd/batchbook/internal/config"
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
	"github.com/MrJamesThe3rd/batchbook/internal/migration"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	backend, err := app.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}
	defer backend.Close()

	var (
		hub      = live.NewHub()
		notifier live.Notifier = hub
		locker   migration.Locker
	)

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("parsing redis url: %w", err)
		}

		rdb := redis.NewClient(opts)
		defer rdb.Close()

		bridge := live.NewRedisBridge(rdb, hub)
		notifier = bridge
		locker = migration.NewRedisLocker(rdb)

		go func() {
			if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("redis bridge stopped", "error", err)
			}
		}()
	}

	svc := app.NewServices(backend.Stores, notifier)

	var migrator *migration.Migrator

	if backend.SQL != nil {
		m, local, err := app.NewMigrator(cfg.Store.LocalPath, backend.SQL, locker, notifier)
		if err != nil {
			slog.Warn("local store unavailable, migration disabled", "path", cfg.Store.LocalPath, "error", err)
		} else if local != nil {
			defer local.Close()
			migrator = m
		}
	}

	authService := auth.NewService(auth.Config{
		Secret:            cfg.Auth.Secret,
		OwnerEmail:        cfg.Auth.OwnerEmail,
		OwnerPasswordHash: cfg.Auth.OwnerPasswordHash,
		TokenTTL:          cfg.Auth.TokenTTL,
	})

	var (
		batchH  = batchHandler.NewHandler(svc.Batches, svc.Sales)
		saleH   = saleHandler.NewHandler(svc.Sales, svc.Batches)
		ledgerH = ledgerHandler.NewHandler(svc.Ledger, svc.Matching, svc.Parser)
	)

	handlers := batchbookHttp.Handlers{
		Auth:      authHandler.NewHandler(authService),
		Batches:   batchH,
		Sales:     saleH,
		Ledger:    ledgerH,
		Backup:    backupHandler.NewHandler(svc.Backup),
		Migration: migrationHandler.NewHandler(migrator),
		Reports:   reportHandler.NewHandler(svc.Reports),
		Stream: streamHandler.NewHandler(hub, map[live.Kind]streamHandler.Snapshot{
			live.KindBatches:  batchH.Snapshot,
			live.KindSales:    saleH.Snapshot,
			live.KindExpenses: ledgerH.Snapshot,
		}),
	}

	router := batchbookHttp.New(authService, handlers, batchbookHttp.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		Timeout:     cfg.Server.Timeout,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "port", server.Addr, "backend", cfg.Store.Backend, "migration", migrator != nil)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
