package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/batchbook/internal/sale"
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

const selectSaleColumns = `
	id, batch_id, date, cust_name, cust_phone, cust_address, qty, price, discount, unit_cost, profit,
	status, courier, tracking_number, ship_order_id, payment_screenshot, notes, legacy_id, created_at, updated_at
`

func scanSale(s scanner) (*sale.Sale, error) {
	var out sale.Sale

	var status string

	var legacyID sql.NullString

	if err := s.Scan(
		&out.ID, &out.BatchID, &out.Date, &out.CustName, &out.CustPhone, &out.CustAddress, &out.Qty,
		&out.Price, &out.Discount, &out.UnitCost, &out.Profit,
		&status, &out.Courier, &out.TrackingNumber, &out.ShipOrderID, &out.PaymentScreenshot, &out.Notes,
		&legacyID, &out.CreatedAt, &out.UpdatedAt,
	); err != nil {
		return nil, err
	}

	out.Status = sale.Status(status)
	out.LegacyID = legacyID.String

	return &out, nil
}

func (s *Store) CreateSale(ctx context.Context, sl *sale.Sale) error {
	query := `
		INSERT INTO sales (id, batch_id, date, cust_name, cust_phone, cust_address, qty, price, discount, unit_cost, profit,
			status, courier, tracking_number, ship_order_id, payment_screenshot, notes, legacy_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW())
		RETURNING created_at
	`

	id := uuid.NewString()

	var legacyID sql.NullString
	if sl.LegacyID != "" {
		legacyID = sql.NullString{String: sl.LegacyID, Valid: true}
	}

	err := s.db.QueryRowContext(ctx, query,
		id, sl.BatchID, sl.Date, sl.CustName, sl.CustPhone, sl.CustAddress, sl.Qty,
		sl.Price, sl.Discount, sl.UnitCost, sl.Profit,
		sl.Status, sl.Courier, sl.TrackingNumber, sl.ShipOrderID, sl.PaymentScreenshot, sl.Notes, legacyID,
	).Scan(&sl.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating sale: %w", err)
	}

	sl.ID = id

	return nil
}

func (s *Store) GetSale(ctx context.Context, id string) (*sale.Sale, error) {
	query := `SELECT ` + selectSaleColumns + ` FROM sales WHERE id = $1`

	sl, err := scanSale(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sale.ErrNotFound
		}

		return nil, fmt.Errorf("getting sale: %w", err)
	}

	return sl, nil
}

func (s *Store) ListSales(ctx context.Context, filter sale.ListFilter) ([]*sale.Sale, error) {
	query := `SELECT ` + selectSaleColumns + ` FROM sales WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.BatchID != "" {
		query += fmt.Sprintf(" AND batch_id = $%d", argIdx)

		args = append(args, filter.BatchID)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
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
		argIdx++
	}

	if filter.Query != "" {
		query += fmt.Sprintf(" AND (cust_name ILIKE '%%' || $%d || '%%' OR status ILIKE '%%' || $%d || '%%')", argIdx, argIdx)

		args = append(args, filter.Query)
	}

	query += " ORDER BY date DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	defer rows.Close()

	var sales []*sale.Sale

	for rows.Next() {
		sl, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sale: %w", err)
		}

		sales = append(sales, sl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sale rows: %w", err)
	}

	return sales, nil
}

func (s *Store) UpdateSale(ctx context.Context, sl *sale.Sale) error {
	query := `
		UPDATE sales
		SET batch_id = $1, date = $2, cust_name = $3, cust_phone = $4, cust_address = $5, qty = $6,
			price = $7, discount = $8, unit_cost = $9, profit = $10, status = $11, courier = $12,
			tracking_number = $13, ship_order_id = $14, payment_screenshot = $15, notes = $16, updated_at = NOW()
		WHERE id = $17
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		sl.BatchID, sl.Date, sl.CustName, sl.CustPhone, sl.CustAddress, sl.Qty,
		sl.Price, sl.Discount, sl.UnitCost, sl.Profit, sl.Status, sl.Courier,
		sl.TrackingNumber, sl.ShipOrderID, sl.PaymentScreenshot, sl.Notes, sl.ID,
	).Scan(&sl.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sale.ErrNotFound
		}

		return fmt.Errorf("updating sale: %w", err)
	}

	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status sale.Status) error {
	query := `
		UPDATE sales
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	res, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sale.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteSale(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting sale: %w", err)
	}

	return nil
}

// ListMigrated returns the legacy ids of sales carried over from the local store.
func (s *Store) ListMigrated(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT legacy_id FROM sales WHERE legacy_id IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("listing migrated sales: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)

	for rows.Next() {
		var legacyID string
		if err := rows.Scan(&legacyID); err != nil {
			return nil, fmt.Errorf("scanning migrated sale: %w", err)
		}

		out[legacyID] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating migrated sales: %w", err)
	}

	return out, nil
}
