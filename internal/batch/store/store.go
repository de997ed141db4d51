package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// costRow is the JSONB shape of one cost component.
type costRow struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
	Qty  decimal.Decimal `json:"qty"`
	Unit string          `json:"unit,omitempty"`
	Type string          `json:"type"`
}

// EncodeCosts renders cost components as the batches.costs JSONB value.
func EncodeCosts(costs []batch.CostComponent) ([]byte, error) {
	rows := make([]costRow, len(costs))
	for i, c := range costs {
		rows[i] = costRow{ID: c.ID, Name: c.Name, Rate: c.Rate, Qty: c.Qty, Unit: c.Unit, Type: string(c.Type)}
	}

	return json.Marshal(rows)
}

func decodeCosts(raw []byte) ([]batch.CostComponent, error) {
	var rows []costRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}

	costs := make([]batch.CostComponent, len(rows))
	for i, r := range rows {
		costs[i] = batch.CostComponent{ID: r.ID, Name: r.Name, Rate: r.Rate, Qty: r.Qty, Unit: r.Unit, Type: batch.ComponentType(r.Type)}
	}

	return costs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

const selectBatchColumns = `
	id, name, target_qty, costs, grand_total, unit_cost, margin_per_unit, selling_price,
	is_public, public_name, description, category, legacy_id, created_at, updated_at
`

func scanBatch(s scanner) (*batch.Batch, error) {
	var b batch.Batch

	var costs []byte

	var legacyID sql.NullString

	if err := s.Scan(
		&b.ID, &b.Name, &b.TargetQty, &costs, &b.GrandTotal, &b.UnitCost, &b.MarginPerUnit, &b.SellingPrice,
		&b.IsPublic, &b.PublicName, &b.Description, &b.Category, &legacyID, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	decoded, err := decodeCosts(costs)
	if err != nil {
		return nil, fmt.Errorf("decoding costs of batch %s: %w", b.ID, err)
	}

	b.Costs = decoded
	b.LegacyID = legacyID.String

	return &b, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) CreateBatch(ctx context.Context, b *batch.Batch) error {
	costs, err := EncodeCosts(b.Costs)
	if err != nil {
		return fmt.Errorf("encoding costs: %w", err)
	}

	query := `
		INSERT INTO batches (id, name, target_qty, costs, grand_total, unit_cost, margin_per_unit, selling_price,
			is_public, public_name, description, category, legacy_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		RETURNING created_at
	`

	id := uuid.NewString()

	err = s.db.QueryRowContext(ctx, query,
		id, b.Name, b.TargetQty, costs, b.GrandTotal, b.UnitCost, b.MarginPerUnit, b.SellingPrice,
		b.IsPublic, b.PublicName, b.Description, b.Category, nullable(b.LegacyID),
	).Scan(&b.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating batch: %w", err)
	}

	b.ID = id

	return nil
}

func (s *Store) GetBatch(ctx context.Context, id string) (*batch.Batch, error) {
	query := `SELECT ` + selectBatchColumns + ` FROM batches WHERE id = $1`

	b, err := scanBatch(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, batch.ErrNotFound
		}

		return nil, fmt.Errorf("getting batch: %w", err)
	}

	return b, nil
}

func (s *Store) ListBatches(ctx context.Context, filter batch.ListFilter) ([]*batch.Batch, error) {
	query := `SELECT ` + selectBatchColumns + ` FROM batches`

	var args []any

	if filter.Query != "" {
		query += " WHERE name ILIKE '%' || $1 || '%'"

		args = append(args, filter.Query)
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	defer rows.Close()

	var batches []*batch.Batch

	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning batch: %w", err)
		}

		batches = append(batches, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batch rows: %w", err)
	}

	return batches, nil
}

func (s *Store) UpdateBatch(ctx context.Context, b *batch.Batch) error {
	costs, err := EncodeCosts(b.Costs)
	if err != nil {
		return fmt.Errorf("encoding costs: %w", err)
	}

	query := `
		UPDATE batches
		SET name = $1, target_qty = $2, costs = $3, grand_total = $4, unit_cost = $5, margin_per_unit = $6,
			selling_price = $7, is_public = $8, public_name = $9, description = $10, category = $11, updated_at = NOW()
		WHERE id = $12
		RETURNING updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		b.Name, b.TargetQty, costs, b.GrandTotal, b.UnitCost, b.MarginPerUnit,
		b.SellingPrice, b.IsPublic, b.PublicName, b.Description, b.Category, b.ID,
	).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return batch.ErrNotFound
		}

		return fmt.Errorf("updating batch: %w", err)
	}

	return nil
}

func (s *Store) DeleteBatch(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting batch: %w", err)
	}

	return nil
}

// ListMigrated returns the legacy id → cloud id pairs of batches carried over
// from the local store.
func (s *Store) ListMigrated(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT legacy_id, id FROM batches WHERE legacy_id IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("listing migrated batches: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)

	for rows.Next() {
		var legacyID, id string
		if err := rows.Scan(&legacyID, &id); err != nil {
			return nil, fmt.Errorf("scanning migrated batch: %w", err)
		}

		out[legacyID] = id
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating migrated batches: %w", err)
	}

	return out, nil
}
