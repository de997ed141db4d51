package localdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

func (s *DB) CreateSale(ctx context.Context, sl *sale.Sale) error {
	now := time.Now()

	var id uint64

	err := s.update(ctx, func(txn *badger.Txn) error {
		var err error

		id, err = nextID(txn, kindSale)
		if err != nil {
			return err
		}

		rec := saleRecord(id, parseID(sl.BatchID), sl)
		rec.CreatedAt = now

		return put(txn, kindSale, id, rec)
	})
	if err != nil {
		return fmt.Errorf("creating sale: %w", err)
	}

	sl.ID = formatID(id)
	sl.CreatedAt = now

	return nil
}

func (s *DB) GetSale(_ context.Context, id string) (*sale.Sale, error) {
	var rec SaleRecord

	err := s.db.View(func(txn *badger.Txn) error {
		return get(txn, kindSale, parseID(id), &rec)
	})
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, sale.ErrNotFound
		}

		return nil, fmt.Errorf("getting sale: %w", err)
	}

	return rec.Sale(), nil
}

func (s *DB) ListSales(ctx context.Context, filter sale.ListFilter) ([]*sale.Sale, error) {
	recs, err := s.ListSaleRecords(ctx)
	if err != nil {
		return nil, err
	}

	var out []*sale.Sale

	for _, rec := range recs {
		sl := rec.Sale()
		if filter.Matches(sl) {
			out = append(out, sl)
		}
	}

	sale.SortByDateDesc(out)

	return out, nil
}

func (s *DB) UpdateSale(ctx context.Context, sl *sale.Sale) error {
	id := parseID(sl.ID)
	now := time.Now()

	err := s.update(ctx, func(txn *badger.Txn) error {
		var prev SaleRecord
		if err := get(txn, kindSale, id, &prev); err != nil {
			return err
		}

		rec := saleRecord(id, parseID(sl.BatchID), sl)
		rec.CreatedAt = prev.CreatedAt
		rec.UpdatedAt = &now

		return put(txn, kindSale, id, rec)
	})
	if err != nil {
		if errors.Is(err, errNotFound) {
			return sale.ErrNotFound
		}

		return fmt.Errorf("updating sale: %w", err)
	}

	sl.UpdatedAt = &now

	return nil
}

func (s *DB) UpdateStatus(ctx context.Context, id string, status sale.Status) error {
	now := time.Now()

	err := s.update(ctx, func(txn *badger.Txn) error {
		var rec SaleRecord
		if err := get(txn, kindSale, parseID(id), &rec); err != nil {
			return err
		}

		rec.Status = string(status)
		rec.UpdatedAt = &now

		return put(txn, kindSale, rec.ID, rec)
	})
	if err != nil {
		if errors.Is(err, errNotFound) {
			return sale.ErrNotFound
		}

		return fmt.Errorf("updating status: %w", err)
	}

	return nil
}

func (s *DB) DeleteSale(ctx context.Context, id string) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		return txn.Delete(recordKey(kindSale, parseID(id)))
	})
	if err != nil {
		return fmt.Errorf("deleting sale: %w", err)
	}

	return nil
}

// ListSaleRecords returns the stored sale records as written, oldest first.
func (s *DB) ListSaleRecords(_ context.Context) ([]SaleRecord, error) {
	var recs []SaleRecord

	err := s.db.View(func(txn *badger.Txn) error {
		var err error

		recs, err = scan[SaleRecord](txn, kindSale)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}

	return recs, nil
}

// PutSaleRecord stores rec as is. A zero ID allocates a new one.
func (s *DB) PutSaleRecord(ctx context.Context, rec SaleRecord) (uint64, error) {
	err := s.update(ctx, func(txn *badger.Txn) error {
		if rec.ID == 0 {
			id, err := nextID(txn, kindSale)
			if err != nil {
				return err
			}

			rec.ID = id
		} else if err := bumpSeq(txn, kindSale, rec.ID); err != nil {
			return err
		}

		return put(txn, kindSale, rec.ID, rec)
	})
	if err != nil {
		return 0, fmt.Errorf("putting sale record: %w", err)
	}

	return rec.ID, nil
}
