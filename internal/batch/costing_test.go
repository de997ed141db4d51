package batch_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLineTotal(t *testing.T) {
	type args struct {
		component batch.CostComponent
		targetQty int
	}

	type testCase struct {
		name string
		args args
		want string
	}

	tests := []testCase{
		{
			name: "FixedIgnoresTarget",
			args: args{
				component: batch.CostComponent{Rate: d("1000"), Qty: d("1"), Type: batch.TypeFixed},
				targetQty: 10,
			},
			want: "1000",
		},
		{
			name: "PerUnitScalesWithTarget",
			args: args{
				component: batch.CostComponent{Rate: d("50"), Qty: d("2"), Type: batch.TypePerUnit},
				targetQty: 10,
			},
			want: "1000",
		},
		{
			name: "UnknownTypeBehavesAsFixed",
			args: args{
				component: batch.CostComponent{Rate: d("12.5"), Qty: d("4"), Type: "WEIRD"},
				targetQty: 10,
			},
			want: "50",
		},
		{
			name: "NegativeRateCountsAsZero",
			args: args{
				component: batch.CostComponent{Rate: d("-5"), Qty: d("3"), Type: batch.TypeFixed},
				targetQty: 1,
			},
			want: "0",
		},
		{
			name: "PerUnitWithZeroTargetUsesOne",
			args: args{
				component: batch.CostComponent{Rate: d("7"), Qty: d("1"), Type: batch.TypePerUnit},
				targetQty: 0,
			},
			want: "7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := batch.LineTotal(tt.args.component, tt.args.targetQty)
			assert.True(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestCompute(t *testing.T) {
	costs := []batch.CostComponent{
		{Name: "Fabric", Rate: d("1000"), Qty: d("1"), Type: batch.TypeFixed},
		{Name: "Stitching", Rate: d("50"), Qty: d("2"), Type: batch.TypePerUnit},
	}

	got := batch.Compute(costs, 10, d("20"))

	assert.Len(t, got.Lines, 2)
	assert.True(t, d("2000").Equal(got.GrandTotal), got.GrandTotal.String())
	assert.True(t, d("200").Equal(got.UnitCost), got.UnitCost.String())
	assert.True(t, d("220").Equal(got.SellingPrice), got.SellingPrice.String())
}

func TestCompute_UnitCostTimesTargetIsGrandTotal(t *testing.T) {
	costs := []batch.CostComponent{
		{Rate: d("480"), Qty: d("1"), Type: batch.TypeFixed},
		{Rate: d("3.5"), Qty: d("4"), Type: batch.TypePerUnit},
		{Rate: d("120"), Qty: d("2"), Type: batch.TypeFixed},
	}

	for _, target := range []int{1, 2, 4, 5, 8, 16, 20} {
		got := batch.Compute(costs, target, decimal.Zero)

		back := got.UnitCost.Mul(decimal.NewFromInt(int64(target)))
		assert.True(t, got.GrandTotal.Equal(back), "target %d: %s != %s", target, got.GrandTotal, back)
	}
}

func TestCompute_EmptyAndDegenerate(t *testing.T) {
	got := batch.Compute(nil, 0, d("-3"))

	assert.True(t, got.GrandTotal.IsZero())
	assert.True(t, got.UnitCost.IsZero())
	assert.True(t, got.SellingPrice.IsZero())
}

func TestPruneEmpty(t *testing.T) {
	costs := []batch.CostComponent{
		{ID: "a", Rate: d("0"), Qty: d("0")},
		{ID: "b", Rate: d("5"), Qty: d("0")},
		{ID: "c", Rate: d("0"), Qty: d("3")},
	}

	got := batch.PruneEmpty(costs)

	assert.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestBatch_Recompute(t *testing.T) {
	b := &batch.Batch{
		TargetQty: 4,
		Costs: []batch.CostComponent{
			{Rate: d("100"), Qty: d("1"), Type: batch.TypeFixed},
			{Rate: d("0"), Qty: d("0"), Type: batch.TypeFixed},
		},
		MarginPerUnit: d("5"),
		// Stale values must not leak into the result.
		GrandTotal: d("9999"),
		UnitCost:   d("9999"),
	}

	b.Recompute()

	assert.Len(t, b.Costs, 1)
	assert.True(t, d("100").Equal(b.GrandTotal))
	assert.True(t, d("25").Equal(b.UnitCost))
	assert.True(t, d("30").Equal(b.SellingPrice))
	assert.True(t, b.HasMargin())
}
