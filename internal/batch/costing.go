package batch

import (
	"github.com/shopspring/decimal"
)

// Costing is the projection of a cost breakdown onto a target quantity.
type Costing struct {
	Lines        []decimal.Decimal
	GrandTotal   decimal.Decimal
	UnitCost     decimal.Decimal
	SellingPrice decimal.Decimal
}

// EffectiveTarget treats a missing or non-positive target as a single unit.
func EffectiveTarget(targetQty int) int {
	if targetQty < 1 {
		return 1
	}

	return targetQty
}

// LineTotal prices one component for the given target.
func LineTotal(c CostComponent, targetQty int) decimal.Decimal {
	base := nonNegative(c.Rate).Mul(nonNegative(c.Qty))

	if c.Type == TypePerUnit {
		return base.Mul(decimal.NewFromInt(int64(EffectiveTarget(targetQty))))
	}

	return base
}

// Compute derives grand total, unit cost and selling price. It never fails:
// negative inputs count as zero and the target is at least one.
func Compute(costs []CostComponent, targetQty int, marginPerUnit decimal.Decimal) Costing {
	target := EffectiveTarget(targetQty)

	out := Costing{Lines: make([]decimal.Decimal, len(costs))}

	for i, c := range costs {
		out.Lines[i] = LineTotal(c, target)
		out.GrandTotal = out.GrandTotal.Add(out.Lines[i])
	}

	out.UnitCost = out.GrandTotal.Div(decimal.NewFromInt(int64(target)))
	out.SellingPrice = out.UnitCost.Add(nonNegative(marginPerUnit))

	return out
}

// PruneEmpty removes lines whose rate and quantity are both zero.
func PruneEmpty(costs []CostComponent) []CostComponent {
	kept := make([]CostComponent, 0, len(costs))
	for _, c := range costs {
		if c.Rate.IsZero() && c.Qty.IsZero() {
			continue
		}

		kept = append(kept, c)
	}

	return kept
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}

	return d
}
