package sale_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPrice(t *testing.T) {
	type args struct {
		base     string
		discount string
		qty      int
		unitCost string
	}

	type testCase struct {
		name       string
		args       args
		wantNet    string
		wantProfit string
	}

	tests := []testCase{
		{
			name:       "DiscountedSale",
			args:       args{base: "1000", discount: "100", qty: 5, unitCost: "50"},
			wantNet:    "900",
			wantProfit: "650",
		},
		{
			name:       "LossMaking",
			args:       args{base: "100", discount: "0", qty: 4, unitCost: "50"},
			wantNet:    "100",
			wantProfit: "-100",
		},
		{
			name:       "UnknownBatchCostsNothing",
			args:       args{base: "300", discount: "0", qty: 2, unitCost: "0"},
			wantNet:    "300",
			wantProfit: "300",
		},
		{
			name:       "NegativeInputsCountAsZero",
			args:       args{base: "500", discount: "-20", qty: 1, unitCost: "-10"},
			wantNet:    "500",
			wantProfit: "500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sale.Price(d(tt.args.base), d(tt.args.discount), tt.args.qty, d(tt.args.unitCost))

			assert.True(t, d(tt.wantNet).Equal(got.NetPrice), got.NetPrice.String())
			assert.True(t, d(tt.wantProfit).Equal(got.Profit), got.Profit.String())
		})
	}
}

func TestSuggestedAmount(t *testing.T) {
	type testCase struct {
		name  string
		batch *batch.Batch
		qty   int
		want  string
	}

	tests := []testCase{
		{
			name:  "UsesSellingPriceWhenMarginSet",
			batch: &batch.Batch{UnitCost: d("200"), MarginPerUnit: d("20"), SellingPrice: d("220")},
			qty:   3,
			want:  "660",
		},
		{
			name:  "FallsBackToMarkup",
			batch: &batch.Batch{UnitCost: d("33.333"), SellingPrice: d("33.333")},
			qty:   2,
			want:  "100",
		},
		{
			name:  "NilBatch",
			batch: nil,
			qty:   2,
			want:  "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sale.SuggestedAmount(tt.batch, tt.qty)
			assert.True(t, d(tt.want).Equal(got), got.String())
		})
	}
}
