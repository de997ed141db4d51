// Package localdb is the embedded store used before the cloud backend
// existed. It keeps JSON records in badger under numeric, auto-incremented
// ids, and screenshots as raw bytes.
package localdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

const (
	kindBatch   = "batch"
	kindSale    = "sale"
	kindExpense = "expense"
	kindMapping = "mapping"
)

// dataKinds are the collections a backup covers. Learned category mappings
// are kept across restores.
var dataKinds = []string{kindBatch, kindSale, kindExpense}

var errNotFound = errors.New("record not found")

const maxConflictRetries = 5

type DB struct {
	db *badger.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)

	return open(opts)
}

// OpenInMemory opens a throwaway store, used by tests and dry runs.
func OpenInMemory() (*DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)

	return open(opts)
}

func open(opts badger.Options) (*DB, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	return &DB{db: db}, nil
}

func (s *DB) Close() error {
	return s.db.Close()
}

func recordKey(kind string, id uint64) []byte {
	key := make([]byte, 0, len(kind)+9)
	key = append(key, kind...)
	key = append(key, '/')

	return binary.BigEndian.AppendUint64(key, id)
}

func prefix(kind string) []byte {
	return []byte(kind + "/")
}

func seqKey(kind string) []byte {
	return []byte("seq:" + kind)
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// parseID returns 0 for ids that did not come from this store.
func parseID(id string) uint64 {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0
	}

	return n
}

// update runs fn in a read-write transaction, retrying on conflicts with a
// concurrent writer.
func (s *DB) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error

	for range maxConflictRetries {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}

	return err
}

// nextID allocates the next id for kind inside txn.
func nextID(txn *badger.Txn, kind string) (uint64, error) {
	current, err := readSeq(txn, kind)
	if err != nil {
		return 0, err
	}

	next := current + 1
	if err := txn.Set(seqKey(kind), binary.BigEndian.AppendUint64(nil, next)); err != nil {
		return 0, err
	}

	return next, nil
}

// bumpSeq makes sure future ids for kind are allocated above id.
func bumpSeq(txn *badger.Txn, kind string, id uint64) error {
	current, err := readSeq(txn, kind)
	if err != nil {
		return err
	}

	if id <= current {
		return nil
	}

	return txn.Set(seqKey(kind), binary.BigEndian.AppendUint64(nil, id))
}

func readSeq(txn *badger.Txn, kind string) (uint64, error) {
	item, err := txn.Get(seqKey(kind))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}

		return 0, err
	}

	var current uint64

	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt sequence for %s", kind)
		}

		current = binary.BigEndian.Uint64(val)

		return nil
	})

	return current, err
}

func put(txn *badger.Txn, kind string, id uint64, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s %d: %w", kind, id, err)
	}

	return txn.Set(recordKey(kind, id), raw)
}

func get(txn *badger.Txn, kind string, id uint64, v any) error {
	item, err := txn.Get(recordKey(kind, id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errNotFound
		}

		return err
	}

	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func exists(txn *badger.Txn, kind string, id uint64) (bool, error) {
	_, err := txn.Get(recordKey(kind, id))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}

	return false, err
}

// scan decodes every record of kind in id order.
func scan[T any](txn *badger.Txn, kind string) ([]T, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix(kind)

	it := txn.NewIterator(opts)
	defer it.Close()

	var out []T

	for it.Rewind(); it.Valid(); it.Next() {
		var rec T

		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
		if err != nil {
			return nil, fmt.Errorf("decoding %s record %x: %w", kind, it.Item().Key(), err)
		}

		out = append(out, rec)
	}

	return out, nil
}

func clearAll(txn *badger.Txn) error {
	for _, kind := range dataKinds {
		if err := deletePrefix(txn, prefix(kind)); err != nil {
			return err
		}

		if err := txn.Delete(seqKey(kind)); err != nil {
			return err
		}
	}

	return nil
}

func deletePrefix(txn *badger.Txn, p []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = p
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)

	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}

	it.Close()

	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}

	return nil
}
