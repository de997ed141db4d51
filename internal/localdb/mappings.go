package localdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/MrJamesThe3rd/batchbook/internal/matching"
)

func (s *DB) FindCategory(_ context.Context, rawDescription string) (string, error) {
	var recs []mappingRecord

	err := s.db.View(func(txn *badger.Txn) error {
		var err error

		recs, err = scan[mappingRecord](txn, kindMapping)

		return err
	})
	if err != nil {
		return "", fmt.Errorf("finding category: %w", err)
	}

	patterns := make([]string, len(recs))
	categories := make([]string, len(recs))

	for i, r := range recs {
		patterns[i], categories[i] = r.RawPattern, r.Category
	}

	return matching.Best(rawDescription, patterns, categories), nil
}

// CreateMapping learns rawPattern. A pattern learnt again, in any letter
// case, is moved to the new category in place.
func (s *DB) CreateMapping(ctx context.Context, rawPattern, category string) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		recs, err := scan[mappingRecord](txn, kindMapping)
		if err != nil {
			return err
		}

		var id uint64

		for _, r := range recs {
			if r.ID != 0 && strings.EqualFold(r.RawPattern, rawPattern) {
				id = r.ID
			}
		}

		if id == 0 {
			if id, err = nextID(txn, kindMapping); err != nil {
				return err
			}
		}

		return put(txn, kindMapping, id, mappingRecord{ID: id, RawPattern: rawPattern, Category: category, CreatedAt: time.Now()})
	})
	if err != nil {
		return fmt.Errorf("learning mapping %q: %w", rawPattern, err)
	}

	return nil
}
