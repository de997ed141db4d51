package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// CurrentVersion is the cloud-era layout: string ids, cost components and
// ledger entries.
const CurrentVersion = 2

// Document is the backup file. Version 1 files come from the local-era app:
// numeric ids, an inputs map instead of costs, and no expenses.
type Document struct {
	Batches   []Batch   `json:"batches"`
	Sales     []Sale    `json:"sales"`
	Expenses  []Expense `json:"expenses"`
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

type Cost struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
	Qty  float64 `json:"qty"`
	Unit string  `json:"unit"`
	Type string  `json:"type"`
}

type Batch struct {
	ID            ID                 `json:"id"`
	Name          string             `json:"name"`
	TargetQty     int                `json:"targetQty"`
	GrandTotal    float64            `json:"grandTotal"`
	UnitCost      float64            `json:"unitCost"`
	Costs         []Cost             `json:"costs,omitempty"`
	Inputs        map[string]float64 `json:"inputs,omitempty"`
	MarginPerUnit float64            `json:"marginPerUnit"`
	SellingPrice  float64            `json:"sellingPrice"`
	PublicName    string             `json:"publicName,omitempty"`
	Description   string             `json:"description,omitempty"`
	Category      string             `json:"category,omitempty"`
	IsPublic      bool               `json:"isPublic"`
}

type Sale struct {
	ID                ID      `json:"id"`
	BatchID           ID      `json:"batchId"`
	Date              Date    `json:"date"`
	CustName          string  `json:"custName"`
	CustPhone         string  `json:"custPhone,omitempty"`
	CustDetail        string  `json:"custDetail,omitempty"`
	CustAddress       string  `json:"custAddress,omitempty"`
	ShipOrderID       string  `json:"shipOrderId,omitempty"`
	Status            string  `json:"status"`
	Qty               int     `json:"qty"`
	Price             float64 `json:"price"`
	Profit            float64 `json:"profit"`
	UnitCost          float64 `json:"unitCost,omitempty"`
	PaymentScreenshot string  `json:"paymentScreenshot,omitempty"`
	Discount          float64 `json:"discount"`
	Courier           string  `json:"courier,omitempty"`
	TrackingNumber    string  `json:"trackingNumber,omitempty"`
	Notes             string  `json:"notes,omitempty"`
}

type Expense struct {
	ID          ID      `json:"id"`
	Date        Date    `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
}

// ID accepts both the numeric ids of version 1 and the string ids of
// version 2, and always writes a string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*id = ID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}

	if _, err := strconv.ParseUint(n.String(), 10, 64); err != nil {
		return fmt.Errorf("id must be a whole number: %s", n)
	}

	*id = ID(n.String())

	return nil
}

// Date reads "2006-01-02" as well as full RFC 3339 timestamps and writes
// the short form.
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}

	return json.Marshal(d.Format(time.DateOnly))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	for _, layout := range []string{time.DateOnly, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}

	return fmt.Errorf("unrecognised date %q", s)
}
