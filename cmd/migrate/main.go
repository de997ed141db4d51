package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/batchbook/internal/app"
	"github.com/MrJamesThe3rd/batchbook/internal/config"
	"github.com/MrJamesThe3rd/batchbook/internal/database"
	"github.com/MrJamesThe3rd/batchbook/internal/live"
	"github.com/MrJamesThe3rd/batchbook/internal/migration"
)

// migrate copies the embedded local store into the cloud database. Records
// already copied by an earlier run are skipped, so it is safe to re-run after
// a partial failure.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	localPath := flag.String("local-path", cfg.Store.LocalPath, "Path of the local store to copy from")
	dryRun := flag.Bool("dry-run", false, "If true, read and convert everything but write nothing")
	flag.Parse()

	if strings.TrimSpace(*localPath) == "" {
		fmt.Fprintln(os.Stderr, "--local-path is required")
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	if *dryRun {
		fmt.Println("[dry-run] no changes will be written")
	}

	report, err := run(context.Background(), cfg, *localPath, *dryRun)
	if report != nil {
		out, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(out))
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "migration failed:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, localPath string, dryRun bool) (*migration.Report, error) {
	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return nil, err
	}

	var (
		locker   migration.Locker
		notifier = live.Discard
	)

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}

		rdb := redis.NewClient(opts)
		defer rdb.Close()

		locker = migration.NewRedisLocker(rdb)
		// Publishing tells running API instances to refresh their streams.
		notifier = live.NewRedisBridge(rdb, live.NewHub())
	}

	m, local, err := app.NewMigrator(localPath, db, locker, notifier)
	if err != nil {
		return nil, err
	}

	if m == nil {
		return nil, fmt.Errorf("no local store at %s", localPath)
	}
	defer local.Close()

	return m.WithOptions(migration.Options{DryRun: dryRun}).Run(ctx)
}
