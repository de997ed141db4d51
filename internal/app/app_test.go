package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/batchbook/internal/app"
	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
	"github.com/MrJamesThe3rd/batchbook/internal/live"
	"github.com/MrJamesThe3rd/batchbook/internal/localdb"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newLocal(t *testing.T) *app.Services {
	t.Helper()

	db, err := localdb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return app.NewServices(app.LocalStores(db), live.Discard)
}

func TestServices_LocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newLocal(t)

	b, err := svc.Batches.Create(ctx, batch.CreateParams{
		Name:      "Lawn",
		TargetQty: 10,
		Costs: []batch.CostComponent{
			{Name: "Fabric", Rate: d("100"), Qty: d("4"), Type: batch.TypeFixed},
			{Name: "Stitching", Rate: d("10"), Qty: d("1"), Type: batch.TypePerUnit},
		},
	})
	require.NoError(t, err)
	assert.True(t, d("50").Equal(b.UnitCost))

	res, err := svc.Sales.Record(ctx, sale.CreateParams{
		BatchID:    b.ID,
		Date:       time.Now(),
		CustName:   "Ayesha",
		Qty:        2,
		BaseAmount: d("200"),
		Discount:   d("20"),
	})
	require.NoError(t, err)
	assert.True(t, d("180").Equal(res.Sale.Price))
	assert.True(t, d("80").Equal(res.Sale.Profit))
	// The result reports the stock the sale was checked against.
	assert.Equal(t, 10, res.Stock.Remaining)
	assert.False(t, res.Oversold)

	sales, err := svc.Sales.List(ctx, sale.ListFilter{BatchID: b.ID})
	require.NoError(t, err)
	require.Len(t, sales, 1)

	after := sale.Reconcile(b, sales, "")
	assert.Equal(t, 2, after.Sold)
	assert.Equal(t, 8, after.Remaining)

	_, err = svc.Ledger.Create(ctx, ledger.CreateParams{
		Date:        time.Now(),
		Description: "Courier payout",
		Amount:      d("75"),
		Category:    "Shipping",
		Type:        ledger.TypeDebit,
	})
	require.NoError(t, err)

	dash, err := svc.Reports.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dash.SaleCount)
	assert.True(t, d("180").Equal(dash.Revenue))
	assert.True(t, d("80").Equal(dash.Profit))
	assert.True(t, d("400").Equal(dash.UnsoldValue))

	doc, err := svc.Backup.Export(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Batches, 1)
	require.Len(t, doc.Sales, 1)
	require.Len(t, doc.Expenses, 1)

	other := newLocal(t)

	counts, err := other.Backup.Restore(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Batches)
	assert.Equal(t, 1, counts.Sales)
	assert.Equal(t, 1, counts.Expenses)

	sales, err = other.Sales.List(ctx, sale.ListFilter{})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "Lawn", other.Sales.BatchName(ctx, sales[0].BatchID))
	assert.True(t, d("80").Equal(sales[0].Profit))
}
