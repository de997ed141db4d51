package batch

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

type costResponse struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Rate      decimal.Decimal     `json:"rate"`
	Qty       decimal.Decimal     `json:"qty"`
	Unit      string              `json:"unit,omitempty"`
	Type      batch.ComponentType `json:"type"`
	LineTotal decimal.Decimal     `json:"line_total"`
}

type stockResponse struct {
	Sold      int             `json:"sold"`
	Remaining int             `json:"remaining"`
	Progress  decimal.Decimal `json:"progress"`
}

type batchResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	TargetQty     int             `json:"target_qty"`
	Costs         []costResponse  `json:"costs"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	MarginPerUnit decimal.Decimal `json:"margin_per_unit"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	IsPublic      bool            `json:"is_public"`
	PublicName    string          `json:"public_name,omitempty"`
	Description   string          `json:"description,omitempty"`
	Category      string          `json:"category,omitempty"`
	Stock         *stockResponse  `json:"stock,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`
}

type previewResponse struct {
	Lines        []decimal.Decimal `json:"lines"`
	GrandTotal   decimal.Decimal   `json:"grand_total"`
	UnitCost     decimal.Decimal   `json:"unit_cost"`
	SellingPrice decimal.Decimal   `json:"selling_price"`
}

func toResponse(b *batch.Batch) batchResponse {
	costs := make([]costResponse, len(b.Costs))
	for i, c := range b.Costs {
		costs[i] = costResponse{
			ID:        c.ID,
			Name:      c.Name,
			Rate:      c.Rate,
			Qty:       c.Qty,
			Unit:      c.Unit,
			Type:      c.Type,
			LineTotal: batch.LineTotal(c, b.TargetQty),
		}
	}

	return batchResponse{
		ID:            b.ID,
		Name:          b.Name,
		TargetQty:     b.TargetQty,
		Costs:         costs,
		GrandTotal:    b.GrandTotal,
		UnitCost:      b.UnitCost,
		MarginPerUnit: b.MarginPerUnit,
		SellingPrice:  b.SellingPrice,
		IsPublic:      b.IsPublic,
		PublicName:    b.PublicName,
		Description:   b.Description,
		Category:      b.Category,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func withStock(b *batch.Batch, st sale.Stock) batchResponse {
	resp := toResponse(b)
	resp.Stock = &stockResponse{Sold: st.Sold, Remaining: st.Remaining, Progress: st.Progress}

	return resp
}

func toResponseList(batches []*batch.Batch, sales []*sale.Sale) []batchResponse {
	resp := make([]batchResponse, len(batches))
	for i, b := range batches {
		resp[i] = withStock(b, sale.Reconcile(b, sales, ""))
	}

	return resp
}
