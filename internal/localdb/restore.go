package localdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/MrJamesThe3rd/batchbook/internal/backup"
	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

// restoreTx keeps numeric ids and renumbers the rest. Batch renumbering is
// remembered so sales put afterwards still point at the right batch.
type restoreTx struct {
	txn     *badger.Txn
	once    sync.Once
	batches map[string]uint64
}

func (s *DB) BeginRestore(_ context.Context) (backup.RestoreTx, error) {
	return &restoreTx{
		txn:     s.db.NewTransaction(true),
		batches: make(map[string]uint64),
	}, nil
}

func (rtx *restoreTx) Clear(_ context.Context) error {
	if err := clearAll(rtx.txn); err != nil {
		return fmt.Errorf("clearing local store: %w", err)
	}

	return nil
}

// assign returns id when it is a free local id, otherwise a new one.
func (rtx *restoreTx) assign(kind, id string) (uint64, error) {
	if n := parseID(id); n != 0 {
		taken, err := exists(rtx.txn, kind, n)
		if err != nil {
			return 0, err
		}

		if !taken {
			return n, bumpSeq(rtx.txn, kind, n)
		}
	}

	return nextID(rtx.txn, kind)
}

func (rtx *restoreTx) PutBatch(_ context.Context, b *batch.Batch) error {
	id, err := rtx.assign(kindBatch, b.ID)
	if err != nil {
		return err
	}

	rtx.batches[b.ID] = id

	rec := batchRecord(id, b)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	return put(rtx.txn, kindBatch, id, rec)
}

func (rtx *restoreTx) PutSale(_ context.Context, s *sale.Sale) error {
	id, err := rtx.assign(kindSale, s.ID)
	if err != nil {
		return err
	}

	batchID, ok := rtx.batches[s.BatchID]
	if !ok {
		batchID = parseID(s.BatchID)
	}

	rec := saleRecord(id, batchID, s)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	return put(rtx.txn, kindSale, id, rec)
}

func (rtx *restoreTx) PutEntry(_ context.Context, e *ledger.Entry) error {
	id, err := rtx.assign(kindExpense, e.ID)
	if err != nil {
		return err
	}

	rec := expenseRecord(id, e)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	return put(rtx.txn, kindExpense, id, rec)
}

func (rtx *restoreTx) Commit() error {
	if err := rtx.txn.Commit(); err != nil {
		return fmt.Errorf("committing restore: %w", err)
	}

	return nil
}

func (rtx *restoreTx) Rollback() error {
	rtx.once.Do(rtx.txn.Discard)
	return nil
}
