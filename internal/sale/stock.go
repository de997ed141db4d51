package sale

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
)

// Stock is how much of a batch has been sold.
type Stock struct {
	Sold int
	// Remaining goes negative when the batch is oversold. A target below 1
	// counts as 1, as in the cost model.
	Remaining int
	// Progress is the sold percentage, capped at 100.
	Progress decimal.Decimal
}

// Reconcile counts the active sales of b. The sale with id excludeSaleID is
// left out so an edit can be checked against everything else.
func Reconcile(b *batch.Batch, sales []*Sale, excludeSaleID string) Stock {
	if b == nil {
		return Stock{}
	}

	var sold int

	for _, s := range sales {
		if s.BatchID != b.ID || !s.Active() {
			continue
		}

		if excludeSaleID != "" && s.ID == excludeSaleID {
			continue
		}

		sold += max(s.Qty, 0)
	}

	target := batch.EffectiveTarget(b.TargetQty)

	progress := decimal.NewFromInt(int64(sold)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(target)))

	hundred := decimal.NewFromInt(100)
	if progress.GreaterThan(hundred) {
		progress = hundred
	}

	return Stock{
		Sold:      sold,
		Remaining: target - sold,
		Progress:  progress,
	}
}

// Oversold reports whether selling qty more would exceed the target.
func (s Stock) Oversold(qty int) bool {
	return qty > s.Remaining
}
