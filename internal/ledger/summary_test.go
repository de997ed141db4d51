package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSummarize(t *testing.T) {
	type testCase struct {
		name        string
		entries     []*ledger.Entry
		wantCredits string
		wantDebits  string
		wantBalance string
	}

	tests := []testCase{
		{
			name: "DepositAndExpenses",
			entries: []*ledger.Entry{
				{Type: ledger.TypeCredit, Amount: d("5000")},
				{Type: ledger.TypeDebit, Amount: d("1200")},
				{Type: ledger.TypeDebit, Amount: d("300")},
			},
			wantCredits: "5000",
			wantDebits:  "1500",
			wantBalance: "3500",
		},
		{
			name: "OrderIndependent",
			entries: []*ledger.Entry{
				{Type: ledger.TypeDebit, Amount: d("300")},
				{Type: ledger.TypeCredit, Amount: d("5000")},
				{Type: ledger.TypeDebit, Amount: d("1200")},
			},
			wantCredits: "5000",
			wantDebits:  "1500",
			wantBalance: "3500",
		},
		{
			name: "BadDataIgnored",
			entries: []*ledger.Entry{
				{Type: ledger.TypeCredit, Amount: d("100")},
				{Type: ledger.TypeDebit, Amount: d("-40")},
				{Type: "REFUND", Amount: d("999")},
			},
			wantCredits: "100",
			wantDebits:  "0",
			wantBalance: "100",
		},
		{
			name:        "Empty",
			wantCredits: "0",
			wantDebits:  "0",
			wantBalance: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ledger.Summarize(tt.entries)

			assert.True(t, d(tt.wantCredits).Equal(got.TotalCredits), got.TotalCredits.String())
			assert.True(t, d(tt.wantDebits).Equal(got.TotalDebits), got.TotalDebits.String())
			assert.True(t, d(tt.wantBalance).Equal(got.Balance), got.Balance.String())
		})
	}
}

func TestSortByDateDesc(t *testing.T) {
	day := func(n int) time.Time { return time.Date(2024, 5, n, 0, 0, 0, 0, time.UTC) }

	entries := []*ledger.Entry{
		{ID: "old", Date: day(1)},
		{ID: "new", Date: day(9)},
		{ID: "mid", Date: day(4)},
	}

	ledger.SortByDateDesc(entries)

	assert.Equal(t, "new", entries[0].ID)
	assert.Equal(t, "mid", entries[1].ID)
	assert.Equal(t, "old", entries[2].ID)
}
