package localdb

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/attachment"
	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

type CostRecord struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
	Qty  decimal.Decimal `json:"qty"`
	Unit string          `json:"unit,omitempty"`
	Type string          `json:"type"`
}

// BatchRecord is a stored batch. Records written before cost components
// existed carry Inputs instead of Costs and have no margin.
type BatchRecord struct {
	ID            uint64             `json:"id"`
	Name          string             `json:"name"`
	TargetQty     int                `json:"targetQty"`
	Costs         []CostRecord       `json:"costs,omitempty"`
	Inputs        map[string]float64 `json:"inputs,omitempty"`
	MarginPerUnit decimal.Decimal    `json:"marginPerUnit"`
	IsPublic      bool               `json:"isPublic,omitempty"`
	PublicName    string             `json:"publicName,omitempty"`
	Description   string             `json:"description,omitempty"`
	Category      string             `json:"category,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     *time.Time         `json:"updatedAt,omitempty"`
}

// Batch upgrades the record to the current model and recomputes its totals.
func (r BatchRecord) Batch() *batch.Batch {
	b := &batch.Batch{
		ID:            formatID(r.ID),
		Name:          r.Name,
		TargetQty:     r.TargetQty,
		MarginPerUnit: r.MarginPerUnit,
		IsPublic:      r.IsPublic,
		PublicName:    r.PublicName,
		Description:   r.Description,
		Category:      r.Category,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}

	if len(r.Costs) == 0 && len(r.Inputs) > 0 {
		b.Costs, b.TargetQty = batch.UpgradeLegacy(r.Inputs, r.TargetQty)
	} else {
		b.Costs = make([]batch.CostComponent, len(r.Costs))
		for i, c := range r.Costs {
			b.Costs[i] = batch.CostComponent{ID: c.ID, Name: c.Name, Rate: c.Rate, Qty: c.Qty, Unit: c.Unit, Type: batch.ComponentType(c.Type)}
		}
	}

	b.Recompute()

	return b
}

func batchRecord(id uint64, b *batch.Batch) BatchRecord {
	costs := make([]CostRecord, len(b.Costs))
	for i, c := range b.Costs {
		costs[i] = CostRecord{ID: c.ID, Name: c.Name, Rate: c.Rate, Qty: c.Qty, Unit: c.Unit, Type: string(c.Type)}
	}

	return BatchRecord{
		ID:            id,
		Name:          b.Name,
		TargetQty:     b.TargetQty,
		Costs:         costs,
		MarginPerUnit: b.MarginPerUnit,
		IsPublic:      b.IsPublic,
		PublicName:    b.PublicName,
		Description:   b.Description,
		Category:      b.Category,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// SaleRecord is a stored sale. The payment screenshot is kept as raw bytes.
type SaleRecord struct {
	ID             uint64          `json:"id"`
	BatchID        uint64          `json:"batchId"`
	Date           time.Time       `json:"date"`
	CustName       string          `json:"custName"`
	CustPhone      string          `json:"custPhone,omitempty"`
	CustAddress    string          `json:"custAddress,omitempty"`
	CustDetail     string          `json:"custDetail,omitempty"`
	Qty            int             `json:"qty"`
	Price          decimal.Decimal `json:"price"`
	Discount       decimal.Decimal `json:"discount"`
	Profit         decimal.Decimal `json:"profit"`
	UnitCost       decimal.Decimal `json:"unitCost"`
	Status         string          `json:"status"`
	Courier        string          `json:"courier,omitempty"`
	TrackingNumber string          `json:"trackingNumber,omitempty"`
	ShipOrderID    string          `json:"shipOrderId,omitempty"`
	Screenshot     []byte          `json:"screenshot,omitempty"`
	ScreenshotType string          `json:"screenshotType,omitempty"`
	ScreenshotURL  string          `json:"screenshotUrl,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      *time.Time      `json:"updatedAt,omitempty"`
}

// Sale converts the record, inlining the screenshot as a data URL.
func (r SaleRecord) Sale() *sale.Sale {
	s := &sale.Sale{
		ID:             formatID(r.ID),
		BatchID:        formatID(r.BatchID),
		Date:           r.Date,
		CustName:       r.CustName,
		CustPhone:      r.CustPhone,
		CustAddress:    r.CustAddress,
		Qty:            r.Qty,
		Price:          r.Price,
		Discount:       r.Discount,
		Profit:         r.Profit,
		UnitCost:       r.UnitCost,
		Status:         sale.Status(r.Status),
		Courier:        r.Courier,
		TrackingNumber: r.TrackingNumber,
		ShipOrderID:    r.ShipOrderID,
		Notes:          r.Notes,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}

	switch {
	case len(r.Screenshot) > 0:
		s.PaymentScreenshot = attachment.DataURL(r.ScreenshotType, r.Screenshot)
	case r.ScreenshotURL != "":
		s.PaymentScreenshot = r.ScreenshotURL
	}

	// Before addresses had their own field they were typed into custDetail.
	if s.CustAddress == "" {
		s.CustAddress = r.CustDetail
	}

	if s.Status == "" {
		s.Status = sale.StatusNew
	}

	return s
}

func saleRecord(id, batchID uint64, s *sale.Sale) SaleRecord {
	r := SaleRecord{
		ID:             id,
		BatchID:        batchID,
		Date:           s.Date,
		CustName:       s.CustName,
		CustPhone:      s.CustPhone,
		CustAddress:    s.CustAddress,
		Qty:            s.Qty,
		Price:          s.Price,
		Discount:       s.Discount,
		Profit:         s.Profit,
		UnitCost:       s.UnitCost,
		Status:         string(s.Status),
		Courier:        s.Courier,
		TrackingNumber: s.TrackingNumber,
		ShipOrderID:    s.ShipOrderID,
		Notes:          s.Notes,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}

	if s.PaymentScreenshot != "" {
		if mimeType, data, err := attachment.ParseDataURL(s.PaymentScreenshot); err == nil {
			r.Screenshot, r.ScreenshotType = data, mimeType
		} else {
			r.ScreenshotURL = s.PaymentScreenshot
		}
	}

	return r
}

type ExpenseRecord struct {
	ID          uint64          `json:"id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Type        string          `json:"type"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (r ExpenseRecord) Entry() *ledger.Entry {
	return &ledger.Entry{
		ID:          formatID(r.ID),
		Date:        r.Date,
		Description: r.Description,
		Amount:      r.Amount,
		Category:    r.Category,
		Type:        ledger.Type(r.Type),
		CreatedAt:   r.CreatedAt,
	}
}

func expenseRecord(id uint64, e *ledger.Entry) ExpenseRecord {
	return ExpenseRecord{
		ID:          id,
		Date:        e.Date,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		Type:        string(e.Type),
		CreatedAt:   e.CreatedAt,
	}
}

type mappingRecord struct {
	ID         uint64    `json:"id,omitempty"`
	RawPattern string    `json:"rawPattern"`
	Category   string    `json:"category"`
	CreatedAt  time.Time `json:"createdAt"`
}
