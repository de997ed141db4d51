package backup

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

func toCosts(costs []Cost) []batch.CostComponent {
	out := make([]batch.CostComponent, len(costs))
	for i, c := range costs {
		out[i] = batch.CostComponent{
			ID:   c.ID,
			Name: c.Name,
			Rate: decimal.NewFromFloat(c.Rate),
			Qty:  decimal.NewFromFloat(c.Qty),
			Unit: c.Unit,
			Type: batch.ComponentType(c.Type),
		}
	}

	return out
}

// ToBatch rebuilds the batch and its derived totals from the stored costs.
func (b Batch) ToBatch() *batch.Batch {
	out := &batch.Batch{
		ID:            string(b.ID),
		Name:          b.Name,
		TargetQty:     b.TargetQty,
		Costs:         toCosts(b.Costs),
		MarginPerUnit: decimal.NewFromFloat(b.MarginPerUnit),
		IsPublic:      b.IsPublic,
		PublicName:    b.PublicName,
		Description:   b.Description,
		Category:      b.Category,
	}

	out.Recompute()

	return out
}

func (s Sale) ToSale() *sale.Sale {
	status := sale.Status(s.Status)
	if status == "" {
		status = sale.StatusNew
	}

	return &sale.Sale{
		ID:                string(s.ID),
		BatchID:           string(s.BatchID),
		Date:              s.Date.Time,
		CustName:          s.CustName,
		CustPhone:         s.CustPhone,
		CustAddress:       s.CustAddress,
		Qty:               s.Qty,
		Price:             decimal.NewFromFloat(s.Price),
		Discount:          decimal.NewFromFloat(s.Discount),
		Profit:            decimal.NewFromFloat(s.Profit),
		UnitCost:          decimal.NewFromFloat(s.UnitCost),
		Status:            status,
		Courier:           s.Courier,
		TrackingNumber:    s.TrackingNumber,
		ShipOrderID:       s.ShipOrderID,
		PaymentScreenshot: s.PaymentScreenshot,
		Notes:             s.Notes,
	}
}

func (e Expense) ToEntry() *ledger.Entry {
	category := e.Category
	if category == "" {
		category = ledger.DefaultCategory
	}

	return &ledger.Entry{
		ID:          string(e.ID),
		Date:        e.Date.Time,
		Description: e.Description,
		Amount:      decimal.NewFromFloat(e.Amount),
		Category:    category,
		Type:        ledger.Type(e.Type),
	}
}

func fromBatch(b *batch.Batch) Batch {
	costs := make([]Cost, len(b.Costs))
	for i, c := range b.Costs {
		costs[i] = Cost{
			ID:   c.ID,
			Name: c.Name,
			Rate: c.Rate.InexactFloat64(),
			Qty:  c.Qty.InexactFloat64(),
			Unit: c.Unit,
			Type: string(c.Type),
		}
	}

	return Batch{
		ID:            ID(b.ID),
		Name:          b.Name,
		TargetQty:     b.TargetQty,
		GrandTotal:    b.GrandTotal.InexactFloat64(),
		UnitCost:      b.UnitCost.InexactFloat64(),
		Costs:         costs,
		MarginPerUnit: b.MarginPerUnit.InexactFloat64(),
		SellingPrice:  b.SellingPrice.InexactFloat64(),
		PublicName:    b.PublicName,
		Description:   b.Description,
		Category:      b.Category,
		IsPublic:      b.IsPublic,
	}
}

func fromSale(s *sale.Sale) Sale {
	return Sale{
		ID:                ID(s.ID),
		BatchID:           ID(s.BatchID),
		Date:              Date{s.Date},
		CustName:          s.CustName,
		CustPhone:         s.CustPhone,
		CustAddress:       s.CustAddress,
		ShipOrderID:       s.ShipOrderID,
		Status:            string(s.Status),
		Qty:               s.Qty,
		Price:             s.Price.InexactFloat64(),
		Profit:            s.Profit.InexactFloat64(),
		UnitCost:          s.UnitCost.InexactFloat64(),
		PaymentScreenshot: s.PaymentScreenshot,
		Discount:          s.Discount.InexactFloat64(),
		Courier:           s.Courier,
		TrackingNumber:    s.TrackingNumber,
		Notes:             s.Notes,
	}
}

func fromEntry(e *ledger.Entry) Expense {
	return Expense{
		ID:          ID(e.ID),
		Date:        Date{e.Date},
		Description: e.Description,
		Amount:      e.Amount.InexactFloat64(),
		Category:    e.Category,
		Type:        string(e.Type),
	}
}
