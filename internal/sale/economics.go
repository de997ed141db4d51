package sale

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
)

// fallbackMarkup prices a batch that has no margin of its own.
var fallbackMarkup = decimal.RequireFromString("1.5")

type Economics struct {
	NetPrice decimal.Decimal
	Profit   decimal.Decimal
}

// Price nets the discount off the base amount and subtracts the cost of the
// goods sold. Negative inputs count as zero; the profit may be negative.
func Price(base, discount decimal.Decimal, qty int, unitCost decimal.Decimal) Economics {
	net := nonNegative(base).Sub(nonNegative(discount))
	cost := nonNegative(unitCost).Mul(decimal.NewFromInt(int64(max(qty, 0))))

	return Economics{
		NetPrice: net,
		Profit:   net.Sub(cost),
	}
}

// SuggestedAmount is the default base amount offered for a new sale.
func SuggestedAmount(b *batch.Batch, qty int) decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}

	unit := b.UnitCost.Mul(fallbackMarkup)
	if b.HasMargin() {
		unit = b.SellingPrice
	}

	return unit.Mul(decimal.NewFromInt(int64(max(qty, 0)))).Round(2)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}

	return d
}
