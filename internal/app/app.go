// Package app assembles stores and services for either storage backend.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/MrJamesThe3rd/batchbook/internal/backup"
	backupstore "github.com/MrJamesThe3rd/batchbook/internal/backup/store"
	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	batchstore "github.com/MrJamesThe3rd/batchbook/internal/batch/store"
	"github.com/MrJamesThe3rd/batchbook/internal/config"
	"github.com/MrJamesThe3rd/batchbook/internal/database"
	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
	ledgerstore "github.com/MrJamesThe3rd/batchbook/internal/ledger/store"
	"github.com/MrJamesThe3rd/batchbook/internal/live"
	"github.com/MrJamesThe3rd/batchbook/internal/localdb"
	"github.com/MrJamesThe3rd/batchbook/internal/matching"
	matchingstore "github.com/MrJamesThe3rd/batchbook/internal/matching/store"
	"github.com/MrJamesThe3rd/batchbook/internal/migration"
	"github.com/MrJamesThe3rd/batchbook/internal/report"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
	salestore "github.com/MrJamesThe3rd/batchbook/internal/sale/store"
	"github.com/MrJamesThe3rd/batchbook/internal/statement"
)

// Stores is one backend's set of repositories.
type Stores struct {
	Batches  batch.Repository
	Sales    sale.Repository
	Ledger   ledger.Repository
	Mappings matching.Repository
	Restorer backup.Restorer
}

// LocalStores serves every repository from the embedded store.
func LocalStores(db *localdb.DB) Stores {
	return Stores{
		Batches:  db,
		Sales:    db,
		Ledger:   db,
		Mappings: db,
		Restorer: db,
	}
}

func CloudStores(db *sql.DB) Stores {
	return Stores{
		Batches:  batchstore.New(db),
		Sales:    salestore.New(db),
		Ledger:   ledgerstore.New(db),
		Mappings: matchingstore.New(db),
		Restorer: backupstore.New(db),
	}
}

type Services struct {
	Batches  *batch.Service
	Sales    *sale.Service
	Ledger   *ledger.Service
	Matching *matching.Service
	Backup   *backup.Service
	Reports  *report.Service
	Parser   *statement.Parser
}

func NewServices(st Stores, notifier live.Notifier) *Services {
	var (
		col         = collections{batches: st.Batches, sales: st.Sales, ledger: st.Ledger}
		matchingSvc = matching.NewService(st.Mappings)
	)

	return &Services{
		Batches:  batch.NewService(st.Batches, notifier),
		Sales:    sale.NewService(st.Sales, st.Batches, notifier),
		Ledger:   ledger.NewService(st.Ledger, matchingSvc, notifier),
		Matching: matchingSvc,
		Backup:   backup.NewService(col, st.Restorer, notifier),
		Reports:  report.NewService(col),
		Parser:   statement.NewParser(),
	}
}

// collections reads whole collections across the three repositories, for
// backups and reports.
type collections struct {
	batches batch.Repository
	sales   sale.Repository
	ledger  ledger.Repository
}

func (c collections) ListBatches(ctx context.Context, filter batch.ListFilter) ([]*batch.Batch, error) {
	return c.batches.ListBatches(ctx, filter)
}

func (c collections) ListSales(ctx context.Context, filter sale.ListFilter) ([]*sale.Sale, error) {
	return c.sales.ListSales(ctx, filter)
}

func (c collections) ListEntries(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error) {
	return c.ledger.ListEntries(ctx, filter)
}

// Backend is an opened store. SQL is set for the cloud backend, Local for
// the embedded one.
type Backend struct {
	Stores Stores
	SQL    *sql.DB
	Local  *localdb.DB
}

// Open connects to the backend cfg selects. The cloud schema is applied on
// every open.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	if cfg.Store.Backend == config.BackendLocal {
		db, err := localdb.Open(cfg.Store.LocalPath)
		if err != nil {
			return nil, err
		}

		return &Backend{Stores: LocalStores(db), Local: db}, nil
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Backend{Stores: CloudStores(db), SQL: db}, nil
}

func (b *Backend) Close() error {
	if b.Local != nil {
		return b.Local.Close()
	}

	return b.SQL.Close()
}

// NewMigrator copies the embedded store at localPath into the cloud
// database. It returns a nil migrator when nothing exists at localPath. The
// caller closes the returned store.
func NewMigrator(localPath string, db *sql.DB, locker migration.Locker, notifier live.Notifier) (*migration.Migrator, *localdb.DB, error) {
	if _, err := os.Stat(localPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil
		}

		return nil, nil, fmt.Errorf("checking local store: %w", err)
	}

	local, err := localdb.Open(localPath)
	if err != nil {
		return nil, nil, err
	}

	m := migration.New(
		local,
		batchstore.New(db),
		salestore.New(db),
		ledgerstore.New(db),
		locker,
		notifier,
		migration.Options{},
	)

	return m, local, nil
}
