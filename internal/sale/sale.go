package sale

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("sale not found")

// UnknownBatchName is shown for sales whose batch no longer exists.
const UnknownBatchName = "Unknown Batch"

type Status string

const (
	StatusNew       Status = "New"
	StatusPending   Status = "Pending"
	StatusShipped   Status = "Shipped"
	StatusDelivered Status = "Delivered"
	StatusCancelled Status = "Cancelled"
)

var Statuses = []Status{StatusNew, StatusPending, StatusShipped, StatusDelivered, StatusCancelled}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}

	return false
}

// Sale is one order against a batch. Price, Profit and UnitCost are frozen
// when the sale is saved and are not touched when the batch is edited later.
type Sale struct {
	ID          string
	BatchID     string
	Date        time.Time
	CustName    string
	CustPhone   string
	CustAddress string
	Qty         int

	// Price is the net amount billed, after Discount.
	Price    decimal.Decimal
	Discount decimal.Decimal
	Profit   decimal.Decimal
	UnitCost decimal.Decimal

	Status         Status
	Courier        string
	TrackingNumber string
	ShipOrderID    string

	// PaymentScreenshot is a data URL or a plain URL.
	PaymentScreenshot string
	Notes             string

	LegacyID  string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// BaseAmount is the billed amount before discount.
func (s *Sale) BaseAmount() decimal.Decimal {
	return s.Price.Add(s.Discount)
}

// Active reports whether the sale consumes stock.
func (s *Sale) Active() bool {
	return s.Status != StatusCancelled
}
