package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/textenc"
)

var ErrUnsupportedVersion = errors.New("unsupported backup version")

// Decode reads a backup file of any known version and returns it upgraded
// to CurrentVersion.
func Decode(r io.Reader) (*Document, error) {
	utf8r, _, err := textenc.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	var doc Document
	if err := json.NewDecoder(utf8r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding backup: %w", err)
	}

	switch doc.Version {
	case 0, 1:
		upgradeV1(&doc)
	case CurrentVersion:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	return &doc, nil
}

// upgradeV1 rewrites a local-era document in place: cost sheets become
// components, missing margins are zero and addresses move out of custDetail.
// Ids are already strings.
func upgradeV1(doc *Document) {
	for i := range doc.Batches {
		b := &doc.Batches[i]

		if len(b.Costs) == 0 && len(b.Inputs) > 0 {
			costs, target := batch.UpgradeLegacy(b.Inputs, b.TargetQty)

			b.Costs = make([]Cost, len(costs))
			for j, c := range costs {
				b.Costs[j] = Cost{ID: c.ID, Name: c.Name, Rate: c.Rate.InexactFloat64(), Qty: c.Qty.InexactFloat64(), Type: string(c.Type)}
			}

			b.TargetQty = target
		}

		b.Inputs = nil

		if b.MarginPerUnit < 0 {
			b.MarginPerUnit = 0
		}

		c := batch.Compute(toCosts(b.Costs), b.TargetQty, decimal.NewFromFloat(b.MarginPerUnit))
		b.GrandTotal = c.GrandTotal.InexactFloat64()
		b.UnitCost = c.UnitCost.InexactFloat64()
		b.SellingPrice = c.SellingPrice.InexactFloat64()
	}

	for i := range doc.Sales {
		s := &doc.Sales[i]
		if s.CustAddress == "" {
			s.CustAddress = s.CustDetail
		}

		s.CustDetail = ""
	}

	if doc.Expenses == nil {
		doc.Expenses = []Expense{}
	}

	doc.Version = CurrentVersion
}
