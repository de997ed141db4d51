package localdb

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
)

func (s *DB) CreateEntry(ctx context.Context, e *ledger.Entry) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		return createEntry(txn, e, time.Now())
	})
	if err != nil {
		return fmt.Errorf("creating ledger entry: %w", err)
	}

	return nil
}

func createEntry(txn *badger.Txn, e *ledger.Entry, now time.Time) error {
	id, err := nextID(txn, kindExpense)
	if err != nil {
		return err
	}

	rec := expenseRecord(id, e)
	rec.CreatedAt = now

	if err := put(txn, kindExpense, id, rec); err != nil {
		return err
	}

	e.ID = formatID(id)
	e.CreatedAt = now

	return nil
}

func (s *DB) ListEntries(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error) {
	recs, err := s.ListExpenseRecords(ctx)
	if err != nil {
		return nil, err
	}

	var out []*ledger.Entry

	for _, rec := range recs {
		if !matchesEntry(filter, rec) {
			continue
		}

		out = append(out, rec.Entry())
	}

	ledger.SortByDateDesc(out)

	return out, nil
}

func matchesEntry(f ledger.ListFilter, r ExpenseRecord) bool {
	if f.Type != nil && r.Type != string(*f.Type) {
		return false
	}

	if f.StartDate != nil && r.Date.Before(*f.StartDate) {
		return false
	}

	if f.EndDate != nil && r.Date.After(*f.EndDate) {
		return false
	}

	return true
}

func (s *DB) DeleteEntry(ctx context.Context, id string) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		return txn.Delete(recordKey(kindExpense, parseID(id)))
	})
	if err != nil {
		return fmt.Errorf("deleting ledger entry: %w", err)
	}

	return nil
}

// ListExpenseRecords returns the stored ledger records, oldest first.
func (s *DB) ListExpenseRecords(_ context.Context) ([]ExpenseRecord, error) {
	var recs []ExpenseRecord

	err := s.db.View(func(txn *badger.Txn) error {
		var err error

		recs, err = scan[ExpenseRecord](txn, kindExpense)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing ledger entries: %w", err)
	}

	return recs, nil
}

// importTx wraps one badger transaction. Badger detects conflicting commits,
// so an overlapping import fails at Commit instead of double-inserting.
type importTx struct {
	txn  *badger.Txn
	once sync.Once
}

func (s *DB) BeginImport(_ context.Context, _, _ time.Time) (ledger.ImportTx, error) {
	return &importTx{txn: s.db.NewTransaction(true)}, nil
}

func (itx *importTx) Commit() error {
	if err := itx.txn.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}

	return nil
}

func (itx *importTx) Rollback() error {
	itx.once.Do(itx.txn.Discard)
	return nil
}

func (itx *importTx) FindDuplicates(_ context.Context, params []ledger.CreateParams) ([]*ledger.Entry, error) {
	if len(params) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		Date        string
		Amount      string
		Type        string
		Description string
	}

	keySet := make(map[lookupKey]struct{}, len(params))
	for _, p := range params {
		keySet[lookupKey{
			Date:        p.Date.Format(time.DateOnly),
			Amount:      p.Amount.StringFixed(2),
			Type:        string(p.Type),
			Description: strings.TrimSpace(p.Description),
		}] = struct{}{}
	}

	recs, err := scan[ExpenseRecord](itx.txn, kindExpense)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}

	var duplicates []*ledger.Entry

	for _, r := range recs {
		k := lookupKey{
			Date:        r.Date.Format(time.DateOnly),
			Amount:      r.Amount.StringFixed(2),
			Type:        r.Type,
			Description: strings.TrimSpace(r.Description),
		}

		if _, found := keySet[k]; found {
			duplicates = append(duplicates, r.Entry())
		}
	}

	return duplicates, nil
}

func (itx *importTx) CreateEntries(_ context.Context, entries []*ledger.Entry) error {
	now := time.Now()

	for _, e := range entries {
		if err := createEntry(itx.txn, e, now); err != nil {
			return fmt.Errorf("creating ledger entry: %w", err)
		}
	}

	return nil
}
