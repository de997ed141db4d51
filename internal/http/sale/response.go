package sale

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

type saleResponse struct {
	ID                string          `json:"id"`
	BatchID           string          `json:"batch_id"`
	BatchName         string          `json:"batch_name,omitempty"`
	Date              string          `json:"date"`
	CustName          string          `json:"cust_name"`
	CustPhone         string          `json:"cust_phone,omitempty"`
	CustAddress       string          `json:"cust_address,omitempty"`
	Qty               int             `json:"qty"`
	Price             decimal.Decimal `json:"price"`
	Discount          decimal.Decimal `json:"discount"`
	BaseAmount        decimal.Decimal `json:"base_amount"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	Profit            decimal.Decimal `json:"profit"`
	Status            sale.Status     `json:"status"`
	Courier           string          `json:"courier,omitempty"`
	TrackingNumber    string          `json:"tracking_number,omitempty"`
	ShipOrderID       string          `json:"ship_order_id,omitempty"`
	PaymentScreenshot string          `json:"payment_screenshot,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         *time.Time      `json:"updated_at,omitempty"`
}

type resultResponse struct {
	Sale      saleResponse `json:"sale"`
	Remaining int          `json:"remaining"`
	Oversold  bool         `json:"oversold"`
}

func toResponse(s *sale.Sale, batchName string) saleResponse {
	return saleResponse{
		ID:                s.ID,
		BatchID:           s.BatchID,
		BatchName:         batchName,
		Date:              s.Date.Format(time.DateOnly),
		CustName:          s.CustName,
		CustPhone:         s.CustPhone,
		CustAddress:       s.CustAddress,
		Qty:               s.Qty,
		Price:             s.Price,
		Discount:          s.Discount,
		BaseAmount:        s.BaseAmount(),
		UnitCost:          s.UnitCost,
		Profit:            s.Profit,
		Status:            s.Status,
		Courier:           s.Courier,
		TrackingNumber:    s.TrackingNumber,
		ShipOrderID:       s.ShipOrderID,
		PaymentScreenshot: s.PaymentScreenshot,
		Notes:             s.Notes,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func toResultResponse(res *sale.Result, batchName string) resultResponse {
	return resultResponse{
		Sale:      toResponse(res.Sale, batchName),
		Remaining: res.Stock.Remaining,
		Oversold:  res.Oversold,
	}
}
