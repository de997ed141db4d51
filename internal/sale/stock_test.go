package sale_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

func TestReconcile(t *testing.T) {
	b := &batch.Batch{ID: "b1", TargetQty: 100}

	type args struct {
		sales     []*sale.Sale
		excludeID string
	}

	type testCase struct {
		name          string
		args          args
		wantSold      int
		wantRemaining int
		wantProgress  string
	}

	tests := []testCase{
		{
			name: "ActiveSalesCount",
			args: args{sales: []*sale.Sale{
				{ID: "s1", BatchID: "b1", Qty: 30, Status: sale.StatusNew},
				{ID: "s2", BatchID: "b1", Qty: 20, Status: sale.StatusDelivered},
			}},
			wantSold:      50,
			wantRemaining: 50,
			wantProgress:  "50",
		},
		{
			name: "CancelledSaleIgnored",
			args: args{sales: []*sale.Sale{
				{ID: "s1", BatchID: "b1", Qty: 30, Status: sale.StatusNew},
				{ID: "s2", BatchID: "b1", Qty: 20, Status: sale.StatusShipped},
				{ID: "s3", BatchID: "b1", Qty: 40, Status: sale.StatusCancelled},
			}},
			wantSold:      50,
			wantRemaining: 50,
			wantProgress:  "50",
		},
		{
			name: "OtherBatchesIgnored",
			args: args{sales: []*sale.Sale{
				{ID: "s1", BatchID: "b1", Qty: 10, Status: sale.StatusNew},
				{ID: "s2", BatchID: "b2", Qty: 90, Status: sale.StatusNew},
			}},
			wantSold:      10,
			wantRemaining: 90,
			wantProgress:  "10",
		},
		{
			name: "ExcludedSaleIgnored",
			args: args{
				sales: []*sale.Sale{
					{ID: "s1", BatchID: "b1", Qty: 30, Status: sale.StatusNew},
					{ID: "s2", BatchID: "b1", Qty: 20, Status: sale.StatusNew},
				},
				excludeID: "s2",
			},
			wantSold:      30,
			wantRemaining: 70,
			wantProgress:  "30",
		},
		{
			name: "OversoldIsNotClamped",
			args: args{sales: []*sale.Sale{
				{ID: "s1", BatchID: "b1", Qty: 80, Status: sale.StatusNew},
				{ID: "s2", BatchID: "b1", Qty: 70, Status: sale.StatusPending},
			}},
			wantSold:      150,
			wantRemaining: -50,
			wantProgress:  "100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sale.Reconcile(b, tt.args.sales, tt.args.excludeID)

			assert.Equal(t, tt.wantSold, got.Sold)
			assert.Equal(t, tt.wantRemaining, got.Remaining)
			assert.True(t, decimal.RequireFromString(tt.wantProgress).Equal(got.Progress), got.Progress.String())
		})
	}
}

func TestReconcile_SmallBatchOversold(t *testing.T) {
	b := &batch.Batch{ID: "b1", TargetQty: 10}
	sales := []*sale.Sale{
		{ID: "s1", BatchID: "b1", Qty: 8, Status: sale.StatusNew},
		{ID: "s2", BatchID: "b1", Qty: 7, Status: sale.StatusNew},
	}

	got := sale.Reconcile(b, sales, "")

	assert.Equal(t, -5, got.Remaining)
	assert.True(t, got.Oversold(1))
}

func TestReconcile_ZeroTargetCountsAsOne(t *testing.T) {
	b := &batch.Batch{ID: "b1", TargetQty: 0}

	got := sale.Reconcile(b, []*sale.Sale{{ID: "s1", BatchID: "b1", Qty: 3, Status: sale.StatusNew}}, "")

	assert.Equal(t, 3, got.Sold)
	assert.Equal(t, -2, got.Remaining)
	assert.True(t, decimal.NewFromInt(100).Equal(got.Progress))

	got = sale.Reconcile(b, nil, "")
	assert.Equal(t, 1, got.Remaining)
	assert.True(t, got.Progress.IsZero())
}

func TestReconcile_NilBatch(t *testing.T) {
	got := sale.Reconcile(nil, []*sale.Sale{{BatchID: "b1", Qty: 3}}, "")
	assert.Equal(t, sale.Stock{}, got)
}
