package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
)

type entryResponse struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Type        ledger.Type     `json:"type"`
	CreatedAt   time.Time       `json:"created_at"`
}

type summaryResponse struct {
	TotalCredits decimal.Decimal `json:"total_credits"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
	Balance      decimal.Decimal `json:"balance"`
}

type lineResponse struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        ledger.Type     `json:"type"`
}

type importResponse struct {
	Imported int             `json:"imported"`
	Entries  []entryResponse `json:"entries"`
	Skipped  []lineResponse  `json:"skipped"`
}

func toResponse(e *ledger.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		Date:        e.Date.Format(time.DateOnly),
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		Type:        e.Type,
		CreatedAt:   e.CreatedAt,
	}
}

func toResponseList(entries []*ledger.Entry) []entryResponse {
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toResponse(e)
	}

	return resp
}

func toImportResponse(res *ledger.ImportResult) importResponse {
	skipped := make([]lineResponse, len(res.Skipped))
	for i, p := range res.Skipped {
		skipped[i] = lineResponse{
			Date:        p.Date.Format(time.DateOnly),
			Description: p.Description,
			Amount:      p.Amount,
			Type:        p.Type,
		}
	}

	return importResponse{
		Imported: len(res.Imported),
		Entries:  toResponseList(res.Imported),
		Skipped:  skipped,
	}
}
