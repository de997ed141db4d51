package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

const salesSheet = "Sales"

var salesHeader = []any{
	"Date", "Batch", "Customer", "Phone", "Address", "Qty",
	"Price", "Discount", "Unit Cost", "Profit", "Status", "Courier", "Tracking",
}

// WriteSalesWorkbook writes the sales matching filter as an xlsx file, newest
// first, with a totals row.
func (s *Service) WriteSalesWorkbook(ctx context.Context, w io.Writer, filter sale.ListFilter) error {
	batches, sales, err := s.load(ctx, filter)
	if err != nil {
		return err
	}

	names := make(map[string]string, len(batches))
	for _, b := range batches {
		names[b.ID] = b.Name
	}

	sale.SortByDateDesc(sales)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if err := f.SetSheetRow(salesSheet, "A1", &salesHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	var totalQty int

	var revenue, profit float64

	for i, sl := range sales {
		name, ok := names[sl.BatchID]
		if !ok {
			name = sale.UnknownBatchName
		}

		row := []any{
			sl.Date.Format(time.DateOnly), name, sl.CustName, sl.CustPhone, sl.CustAddress, sl.Qty,
			sl.Price.InexactFloat64(), sl.Discount.InexactFloat64(), sl.UnitCost.InexactFloat64(), sl.Profit.InexactFloat64(),
			string(sl.Status), sl.Courier, sl.TrackingNumber,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(salesSheet, cell, &row); err != nil {
			return fmt.Errorf("writing sale row: %w", err)
		}

		if sl.Active() {
			totalQty += sl.Qty
			revenue += sl.Price.InexactFloat64()
			profit += sl.Profit.InexactFloat64()
		}
	}

	totals := []any{"Total", "", "", "", "", totalQty, revenue, "", "", profit}

	cell, err := excelize.CoordinatesToCellName(1, len(sales)+2)
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(salesSheet, cell, &totals); err != nil {
		return fmt.Errorf("writing totals: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}
