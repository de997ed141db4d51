package store

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectEntryColumns = `id, date, description, amount, category, type, legacy_id, created_at`

func scanEntry(s scanner) (*ledger.Entry, error) {
	var e ledger.Entry

	var typeStr string

	var legacyID sql.NullString

	if err := s.Scan(&e.ID, &e.Date, &e.Description, &e.Amount, &e.Category, &typeStr, &legacyID, &e.CreatedAt); err != nil {
		return nil, err
	}

	e.Type = ledger.Type(typeStr)
	e.LegacyID = legacyID.String

	return &e, nil
}

// execQuerier is satisfied by both *sql.DB and *sql.Tx.
type execQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertEntry(ctx context.Context, q execQuerier, e *ledger.Entry) error {
	query := `
		INSERT INTO ledger_entries (id, date, description, amount, category, type, legacy_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	id := uuid.NewString()

	var legacyID sql.NullString
	if e.LegacyID != "" {
		legacyID = sql.NullString{String: e.LegacyID, Valid: true}
	}

	if err := q.QueryRowContext(ctx, query,
		id, e.Date, e.Description, e.Amount, e.Category, e.Type, legacyID,
	).Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("creating ledger entry: %w", err)
	}

	e.ID = id

	return nil
}

func (s *Store) CreateEntry(ctx context.Context, e *ledger.Entry) error {
	return insertEntry(ctx, s.db, e)
}

func (s *Store) ListEntries(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM ledger_entries WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
	}

	query += " ORDER BY date DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger rows: %w", err)
	}

	return entries, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM ledger_entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting ledger entry: %w", err)
	}

	return nil
}

// ListMigrated returns the legacy ids of entries carried over from the local store.
func (s *Store) ListMigrated(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT legacy_id FROM ledger_entries WHERE legacy_id IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("listing migrated ledger entries: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)

	for rows.Next() {
		var legacyID string
		if err := rows.Scan(&legacyID); err != nil {
			return nil, fmt.Errorf("scanning migrated ledger entry: %w", err)
		}

		out[legacyID] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating migrated ledger entries: %w", err)
	}

	return out, nil
}

func importLockKey(minDate, maxDate time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte("ledger"))
	h.Write([]byte{0})
	h.Write([]byte(minDate.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(maxDate.Format(time.DateOnly)))

	return int64(h.Sum64())
}

type importTx struct {
	tx *sql.Tx
}

// BeginImport opens a transaction holding an advisory lock on the date range
// so overlapping statement imports cannot both pass the duplicate check.
func (s *Store) BeginImport(ctx context.Context, minDate, maxDate time.Time) (ledger.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey(minDate, maxDate)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

// FindDuplicates returns stored entries in the params' date range sharing
// date, amount, type and description with one of params.
func (itx *importTx) FindDuplicates(ctx context.Context, params []ledger.CreateParams) ([]*ledger.Entry, error) {
	if len(params) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		Date        string
		Amount      string
		Type        ledger.Type
		Description string
	}

	minDate := params[0].Date
	maxDate := params[0].Date
	keySet := make(map[lookupKey]struct{}, len(params))

	for _, p := range params {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}

		keySet[lookupKey{
			Date:        p.Date.Format(time.DateOnly),
			Amount:      p.Amount.StringFixed(2),
			Type:        p.Type,
			Description: strings.TrimSpace(p.Description),
		}] = struct{}{}
	}

	query := `SELECT ` + selectEntryColumns + `
		FROM ledger_entries
		WHERE date >= $1 AND date <= $2`

	rows, err := itx.tx.QueryContext(ctx, query, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}

		k := lookupKey{
			Date:        e.Date.Format(time.DateOnly),
			Amount:      e.Amount.StringFixed(2),
			Type:        e.Type,
			Description: strings.TrimSpace(e.Description),
		}

		if _, found := keySet[k]; !found {
			continue
		}

		duplicates = append(duplicates, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreateEntries(ctx context.Context, entries []*ledger.Entry) error {
	for _, e := range entries {
		if err := insertEntry(ctx, itx.tx, e); err != nil {
			return err
		}
	}

	return nil
}
