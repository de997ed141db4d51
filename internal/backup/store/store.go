package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/batchbook/internal/backup"
	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	batchstore "github.com/MrJamesThe3rd/batchbook/internal/batch/store"
	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

// Store restores backups into the cloud database. Record ids from the file
// are kept; missing ids get a fresh UUID.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type restoreTx struct {
	tx *sql.Tx
}

func (s *Store) BeginRestore(ctx context.Context) (backup.RestoreTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning restore tx: %w", err)
	}

	return &restoreTx{tx: tx}, nil
}

func (rtx *restoreTx) Commit() error   { return rtx.tx.Commit() }
func (rtx *restoreTx) Rollback() error { return rtx.tx.Rollback() }

func (rtx *restoreTx) Clear(ctx context.Context) error {
	if _, err := rtx.tx.ExecContext(ctx, `TRUNCATE batches, sales, ledger_entries`); err != nil {
		return fmt.Errorf("truncating tables: %w", err)
	}

	return nil
}

func idOrNew(id string) string {
	if id == "" {
		return uuid.NewString()
	}

	return id
}

func createdAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}

	return t
}

func (rtx *restoreTx) PutBatch(ctx context.Context, b *batch.Batch) error {
	costs, err := batchstore.EncodeCosts(b.Costs)
	if err != nil {
		return fmt.Errorf("encoding costs: %w", err)
	}

	query := `
		INSERT INTO batches (id, name, target_qty, costs, grand_total, unit_cost, margin_per_unit, selling_price,
			is_public, public_name, description, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = rtx.tx.ExecContext(ctx, query,
		idOrNew(b.ID), b.Name, b.TargetQty, costs, b.GrandTotal, b.UnitCost, b.MarginPerUnit, b.SellingPrice,
		b.IsPublic, b.PublicName, b.Description, b.Category, createdAt(b.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("restoring batch: %w", err)
	}

	return nil
}

func (rtx *restoreTx) PutSale(ctx context.Context, s *sale.Sale) error {
	query := `
		INSERT INTO sales (id, batch_id, date, cust_name, cust_phone, cust_address, qty, price, discount, unit_cost, profit,
			status, courier, tracking_number, ship_order_id, payment_screenshot, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := rtx.tx.ExecContext(ctx, query,
		idOrNew(s.ID), s.BatchID, s.Date, s.CustName, s.CustPhone, s.CustAddress, s.Qty,
		s.Price, s.Discount, s.UnitCost, s.Profit,
		s.Status, s.Courier, s.TrackingNumber, s.ShipOrderID, s.PaymentScreenshot, s.Notes, createdAt(s.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("restoring sale: %w", err)
	}

	return nil
}

func (rtx *restoreTx) PutEntry(ctx context.Context, e *ledger.Entry) error {
	query := `
		INSERT INTO ledger_entries (id, date, description, amount, category, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := rtx.tx.ExecContext(ctx, query,
		idOrNew(e.ID), e.Date, e.Description, e.Amount, e.Category, e.Type, createdAt(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("restoring ledger entry: %w", err)
	}

	return nil
}
