package localdb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
)

func (s *DB) CreateBatch(ctx context.Context, b *batch.Batch) error {
	now := time.Now()

	var id uint64

	err := s.update(ctx, func(txn *badger.Txn) error {
		var err error

		id, err = nextID(txn, kindBatch)
		if err != nil {
			return err
		}

		rec := batchRecord(id, b)
		rec.CreatedAt = now

		return put(txn, kindBatch, id, rec)
	})
	if err != nil {
		return fmt.Errorf("creating batch: %w", err)
	}

	b.ID = formatID(id)
	b.CreatedAt = now

	return nil
}

func (s *DB) GetBatch(_ context.Context, id string) (*batch.Batch, error) {
	var rec BatchRecord

	err := s.db.View(func(txn *badger.Txn) error {
		return get(txn, kindBatch, parseID(id), &rec)
	})
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, batch.ErrNotFound
		}

		return nil, fmt.Errorf("getting batch: %w", err)
	}

	return rec.Batch(), nil
}

func (s *DB) ListBatches(ctx context.Context, filter batch.ListFilter) ([]*batch.Batch, error) {
	recs, err := s.ListBatchRecords(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(filter.Query)

	out := make([]*batch.Batch, 0, len(recs))

	// Newest first, matching the cloud store.
	for i := len(recs) - 1; i >= 0; i-- {
		if q != "" && !strings.Contains(strings.ToLower(recs[i].Name), q) {
			continue
		}

		out = append(out, recs[i].Batch())
	}

	return out, nil
}

func (s *DB) UpdateBatch(ctx context.Context, b *batch.Batch) error {
	id := parseID(b.ID)
	now := time.Now()

	err := s.update(ctx, func(txn *badger.Txn) error {
		var prev BatchRecord
		if err := get(txn, kindBatch, id, &prev); err != nil {
			return err
		}

		rec := batchRecord(id, b)
		rec.CreatedAt = prev.CreatedAt
		rec.UpdatedAt = &now

		return put(txn, kindBatch, id, rec)
	})
	if err != nil {
		if errors.Is(err, errNotFound) {
			return batch.ErrNotFound
		}

		return fmt.Errorf("updating batch: %w", err)
	}

	b.UpdatedAt = &now

	return nil
}

func (s *DB) DeleteBatch(ctx context.Context, id string) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		return txn.Delete(recordKey(kindBatch, parseID(id)))
	})
	if err != nil {
		return fmt.Errorf("deleting batch: %w", err)
	}

	return nil
}

// ListBatchRecords returns the stored batch records as written, oldest first.
func (s *DB) ListBatchRecords(_ context.Context) ([]BatchRecord, error) {
	var recs []BatchRecord

	err := s.db.View(func(txn *badger.Txn) error {
		var err error

		recs, err = scan[BatchRecord](txn, kindBatch)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}

	return recs, nil
}

// PutBatchRecord stores rec as is. A zero ID allocates a new one. It is how
// records from older versions of the app are written.
func (s *DB) PutBatchRecord(ctx context.Context, rec BatchRecord) (uint64, error) {
	err := s.update(ctx, func(txn *badger.Txn) error {
		if rec.ID == 0 {
			id, err := nextID(txn, kindBatch)
			if err != nil {
				return err
			}

			rec.ID = id
		} else if err := bumpSeq(txn, kindBatch, rec.ID); err != nil {
			return err
		}

		return put(txn, kindBatch, rec.ID, rec)
	})
	if err != nil {
		return 0, fmt.Errorf("putting batch record: %w", err)
	}

	return rec.ID, nil
}
