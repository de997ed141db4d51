package batch

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("batch not found")

// ComponentType decides how a cost line combines with the batch target.
type ComponentType string

const (
	// TypeFixed is a one-off bulk cost for the whole run.
	TypeFixed ComponentType = "FIXED"
	// TypePerUnit is paid again for every finished unit.
	TypePerUnit ComponentType = "PER_UNIT"
)

// CostComponent is one line of a batch's bill of materials and labour.
type CostComponent struct {
	ID   string
	Name string
	Rate decimal.Decimal
	Qty  decimal.Decimal
	Unit string
	Type ComponentType
}

// Batch is a planned production run.
type Batch struct {
	ID        string
	Name      string
	TargetQty int
	Costs     []CostComponent

	// Derived from Costs, TargetQty and MarginPerUnit by Recompute.
	GrandTotal   decimal.Decimal
	UnitCost     decimal.Decimal
	SellingPrice decimal.Decimal

	MarginPerUnit decimal.Decimal
	IsPublic      bool
	PublicName    string
	Description   string
	Category      string

	// LegacyID is the local store id this batch was migrated from, if any.
	LegacyID string

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Recompute drops empty cost lines and rebuilds the derived totals.
func (b *Batch) Recompute() {
	b.Costs = PruneEmpty(b.Costs)

	c := Compute(b.Costs, b.TargetQty, b.MarginPerUnit)
	b.GrandTotal = c.GrandTotal
	b.UnitCost = c.UnitCost
	b.SellingPrice = c.SellingPrice
}

// HasMargin reports whether an explicit margin was set on the batch.
func (b *Batch) HasMargin() bool {
	return b.MarginPerUnit.IsPositive()
}
