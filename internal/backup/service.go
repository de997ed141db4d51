// Package backup exports the active store to a single JSON document and
// restores one, replacing everything.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
	"github.com/MrJamesThe3rd/batchbook/internal/live"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

//go:generate mockgen -source=service.go -destination=store_mock.go -package=backup
type Source interface {
	ListBatches(ctx context.Context, filter batch.ListFilter) ([]*batch.Batch, error)
	ListSales(ctx context.Context, filter sale.ListFilter) ([]*sale.Sale, error)
	ListEntries(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error)
}

type Restorer interface {
	BeginRestore(ctx context.Context) (RestoreTx, error)
}

// RestoreTx replaces the store's content in one all-or-nothing unit. Put
// calls keep the record's id where the store can; sales are put after
// batches so a store that must renumber batches can remap their references.
type RestoreTx interface {
	Clear(ctx context.Context) error
	PutBatch(ctx context.Context, b *batch.Batch) error
	PutSale(ctx context.Context, s *sale.Sale) error
	PutEntry(ctx context.Context, e *ledger.Entry) error
	Commit() error
	Rollback() error
}

type Service struct {
	source   Source
	restorer Restorer
	notifier live.Notifier
}

func NewService(source Source, restorer Restorer, notifier live.Notifier) *Service {
	return &Service{source: source, restorer: restorer, notifier: notifier}
}

type Counts struct {
	Batches  int `json:"batches"`
	Sales    int `json:"sales"`
	Expenses int `json:"expenses"`
}

// Export snapshots the store as a current-version document.
func (s *Service) Export(ctx context.Context) (*Document, error) {
	batches, err := s.source.ListBatches(ctx, batch.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("exporting batches: %w", err)
	}

	sales, err := s.source.ListSales(ctx, sale.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("exporting sales: %w", err)
	}

	entries, err := s.source.ListEntries(ctx, ledger.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("exporting ledger: %w", err)
	}

	doc := &Document{
		Batches:   make([]Batch, len(batches)),
		Sales:     make([]Sale, len(sales)),
		Expenses:  make([]Expense, len(entries)),
		Version:   CurrentVersion,
		Timestamp: time.Now().UTC(),
	}

	for i, b := range batches {
		doc.Batches[i] = fromBatch(b)
	}

	for i, sl := range sales {
		doc.Sales[i] = fromSale(sl)
	}

	for i, e := range entries {
		doc.Expenses[i] = fromEntry(e)
	}

	return doc, nil
}

// Write encodes doc as indented JSON.
func Write(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}

	return nil
}

// Restore replaces all data with doc. Nothing is changed if any record fails.
func (s *Service) Restore(ctx context.Context, doc *Document) (*Counts, error) {
	rtx, err := s.restorer.BeginRestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin restore: %w", err)
	}
	defer rtx.Rollback()

	if err := rtx.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clearing store: %w", err)
	}

	counts := &Counts{}

	for _, b := range doc.Batches {
		if err := rtx.PutBatch(ctx, b.ToBatch()); err != nil {
			return nil, fmt.Errorf("restoring batch %s: %w", b.ID, err)
		}

		counts.Batches++
	}

	for _, sl := range doc.Sales {
		if err := rtx.PutSale(ctx, sl.ToSale()); err != nil {
			return nil, fmt.Errorf("restoring sale %s: %w", sl.ID, err)
		}

		counts.Sales++
	}

	for _, e := range doc.Expenses {
		if err := rtx.PutEntry(ctx, e.ToEntry()); err != nil {
			return nil, fmt.Errorf("restoring expense %s: %w", e.ID, err)
		}

		counts.Expenses++
	}

	if err := rtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit restore: %w", err)
	}

	for _, kind := range live.Kinds {
		s.notifier.Notify(ctx, kind)
	}

	return counts, nil
}

// ClearAll deletes every batch, sale and ledger entry.
func (s *Service) ClearAll(ctx context.Context) error {
	_, err := s.Restore(ctx, &Document{Version: CurrentVersion})
	return err
}
