package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

type Summary struct {
	TotalCredits decimal.Decimal
	TotalDebits  decimal.Decimal
	Balance      decimal.Decimal
}

// Summarize totals entries by type. Negative amounts count as zero and
// entries of an unknown type are ignored.
func Summarize(entries []*Entry) Summary {
	var out Summary

	for _, e := range entries {
		amount := e.Amount
		if amount.IsNegative() {
			amount = decimal.Zero
		}

		switch e.Type {
		case TypeCredit:
			out.TotalCredits = out.TotalCredits.Add(amount)
		case TypeDebit:
			out.TotalDebits = out.TotalDebits.Add(amount)
		}
	}

	out.Balance = out.TotalCredits.Sub(out.TotalDebits)

	return out
}

// SortByDateDesc orders entries newest first.
func SortByDateDesc(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}

		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}
