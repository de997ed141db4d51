// Package migration copies the local store into the cloud store. Every copied
// record carries the local id as its LegacyID, which is how a re-run knows to
// skip it and how sales find their batch again.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/MrJamesThe3rd/batchbook/internal/attachment"
	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
	"github.com/MrJamesThe3rd/batchbook/internal/live"
	"github.com/MrJamesThe3rd/batchbook/internal/localdb"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

// UnknownLegacyBatch is the batch id given to sales whose local batch was
// never migrated.
const UnknownLegacyBatch = "unknown-legacy-batch"

var ErrAlreadyRunning = errors.New("migration already running")

//go:generate mockgen -source=migration.go -destination=repository_mock.go -package=migration
type Source interface {
	ListBatchRecords(ctx context.Context) ([]localdb.BatchRecord, error)
	ListSaleRecords(ctx context.Context) ([]localdb.SaleRecord, error)
	ListExpenseRecords(ctx context.Context) ([]localdb.ExpenseRecord, error)
}

type BatchTarget interface {
	CreateBatch(ctx context.Context, b *batch.Batch) error
	// ListMigrated maps legacy id to cloud id.
	ListMigrated(ctx context.Context) (map[string]string, error)
}

type SaleTarget interface {
	CreateSale(ctx context.Context, s *sale.Sale) error
	ListMigrated(ctx context.Context) (map[string]bool, error)
}

type LedgerTarget interface {
	CreateEntry(ctx context.Context, e *ledger.Entry) error
	ListMigrated(ctx context.Context) (map[string]bool, error)
}

// Locker guards against two runs at once. Lock returns ErrAlreadyRunning
// when another run holds it.
type Locker interface {
	Lock(ctx context.Context) (release func(context.Context) error, err error)
}

type Options struct {
	// DryRun reads and converts everything but writes nothing.
	DryRun bool
}

// Report counts what a run did. It is returned even when the run fails part
// way, describing the records copied before the failure.
type Report struct {
	Batches       int  `json:"batches"`
	Sales         int  `json:"sales"`
	Expenses      int  `json:"expenses"`
	Skipped       int  `json:"skipped"`
	OrphanSales   int  `json:"orphanSales"`
	ImagesDropped int  `json:"imagesDropped"`
	DryRun        bool `json:"dryRun"`
}

type Migrator struct {
	source   Source
	batches  BatchTarget
	sales    SaleTarget
	ledger   LedgerTarget
	locker   Locker
	notifier live.Notifier
	opts     Options
}

func New(source Source, batches BatchTarget, sales SaleTarget, ledger LedgerTarget, locker Locker, notifier live.Notifier, opts Options) *Migrator {
	if locker == nil {
		locker = NoLock{}
	}

	return &Migrator{
		source:   source,
		batches:  batches,
		sales:    sales,
		ledger:   ledger,
		locker:   locker,
		notifier: notifier,
		opts:     opts,
	}
}

// WithOptions returns a copy of m that runs with opts.
func (m *Migrator) WithOptions(opts Options) *Migrator {
	c := *m
	c.opts = opts

	return &c
}

// Run copies batches, then sales, then ledger entries. It is not atomic: the
// first write failure stops the run and what was copied stays copied.
func (m *Migrator) Run(ctx context.Context) (*Report, error) {
	release, err := m.locker.Lock(ctx)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("failed to release migration lock", "error", err)
		}
	}()

	report := &Report{DryRun: m.opts.DryRun}
	started := time.Now()

	defer func() {
		if m.opts.DryRun || report.Batches+report.Sales+report.Expenses == 0 {
			return
		}

		for _, kind := range live.Kinds {
			m.notifier.Notify(ctx, kind)
		}
	}()

	idMap, err := m.migrateBatches(ctx, report)
	if err != nil {
		return report, err
	}

	if err := m.migrateSales(ctx, idMap, report); err != nil {
		return report, err
	}

	if err := m.migrateExpenses(ctx, report); err != nil {
		return report, err
	}

	slog.Info("migration finished",
		"batches", report.Batches,
		"sales", report.Sales,
		"expenses", report.Expenses,
		"skipped", report.Skipped,
		"dry_run", report.DryRun,
		"duration", time.Since(started),
	)

	return report, nil
}

func legacyID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// migrateBatches returns the local → cloud id table, seeded with batches
// copied by earlier runs.
func (m *Migrator) migrateBatches(ctx context.Context, report *Report) (map[string]string, error) {
	idMap, err := m.batches.ListMigrated(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading migrated batches: %w", err)
	}

	if idMap == nil {
		idMap = make(map[string]string)
	}

	recs, err := m.source.ListBatchRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading local batches: %w", err)
	}

	for _, rec := range recs {
		oldID := legacyID(rec.ID)
		if _, done := idMap[oldID]; done {
			report.Skipped++
			continue
		}

		b := rec.Batch()
		b.ID = ""
		b.LegacyID = oldID

		if m.opts.DryRun {
			idMap[oldID] = "dry-run-" + oldID
			report.Batches++

			continue
		}

		if err := m.batches.CreateBatch(ctx, b); err != nil {
			return nil, fmt.Errorf("migrating batch %s: %w", oldID, err)
		}

		idMap[oldID] = b.ID
		report.Batches++
	}

	return idMap, nil
}

func (m *Migrator) migrateSales(ctx context.Context, idMap map[string]string, report *Report) error {
	done, err := m.sales.ListMigrated(ctx)
	if err != nil {
		return fmt.Errorf("loading migrated sales: %w", err)
	}

	recs, err := m.source.ListSaleRecords(ctx)
	if err != nil {
		return fmt.Errorf("reading local sales: %w", err)
	}

	for _, rec := range recs {
		oldID := legacyID(rec.ID)
		if done[oldID] {
			report.Skipped++
			continue
		}

		s := m.convertSale(rec, report)
		s.LegacyID = oldID

		if newID, ok := idMap[legacyID(rec.BatchID)]; ok {
			s.BatchID = newID
		} else {
			s.BatchID = UnknownLegacyBatch
			report.OrphanSales++
		}

		if m.opts.DryRun {
			report.Sales++
			continue
		}

		if err := m.sales.CreateSale(ctx, s); err != nil {
			return fmt.Errorf("migrating sale %s: %w", oldID, err)
		}

		report.Sales++
	}

	return nil
}

// convertSale drops the local id and re-encodes the screenshot. A screenshot
// that cannot be decoded is left out rather than failing the sale.
func (m *Migrator) convertSale(rec localdb.SaleRecord, report *Report) *sale.Sale {
	raw := rec.Screenshot
	rec.Screenshot = nil

	s := rec.Sale()
	s.ID = ""

	if len(raw) == 0 {
		return s
	}

	dataURL, err := attachment.FromBinary(raw)
	if err != nil {
		slog.Warn("dropping unreadable screenshot", "sale", rec.ID, "error", err)
		report.ImagesDropped++

		return s
	}

	s.PaymentScreenshot = dataURL

	return s
}

func (m *Migrator) migrateExpenses(ctx context.Context, report *Report) error {
	done, err := m.ledger.ListMigrated(ctx)
	if err != nil {
		return fmt.Errorf("loading migrated ledger entries: %w", err)
	}

	recs, err := m.source.ListExpenseRecords(ctx)
	if err != nil {
		return fmt.Errorf("reading local ledger: %w", err)
	}

	for _, rec := range recs {
		oldID := legacyID(rec.ID)
		if done[oldID] {
			report.Skipped++
			continue
		}

		e := rec.Entry()
		e.ID = ""
		e.LegacyID = oldID

		if e.Category == "" {
			e.Category = ledger.DefaultCategory
		}

		if m.opts.DryRun {
			report.Expenses++
			continue
		}

		if err := m.ledger.CreateEntry(ctx, e); err != nil {
			return fmt.Errorf("migrating ledger entry %s: %w", oldID, err)
		}

		report.Expenses++
	}

	return nil
}
