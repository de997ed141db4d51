package backup_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/batchbook/internal/backup"
)

const v1Document = `{
	"version": 1,
	"timestamp": "2024-03-01T10:00:00Z",
	"batches": [
		{"id": 7, "name": "Eid Lawn", "inputs": {"p_mat": 100, "q_mat": 2, "p_stitch": 10, "q_stitch": 20}}
	],
	"sales": [
		{"id": 3, "batchId": 7, "date": "2024-02-10", "custName": "Ayesha", "custDetail": "House 4, Lahore", "qty": 2, "price": 50, "profit": 10, "discount": 0, "status": ""}
	]
}`

func TestDecode_V1(t *testing.T) {
	doc, err := backup.Decode(strings.NewReader(v1Document))
	require.NoError(t, err)

	require.Len(t, doc.Batches, 1)
	b := doc.Batches[0]
	assert.Equal(t, backup.ID("7"), b.ID)
	assert.Nil(t, b.Inputs)
	assert.Len(t, b.Costs, 2)
	assert.Equal(t, 20, b.TargetQty)
	assert.InDelta(t, 400, b.GrandTotal, 0.0001)
	assert.InDelta(t, 20, b.UnitCost, 0.0001)
	assert.InDelta(t, 20, b.SellingPrice, 0.0001)

	require.Len(t, doc.Sales, 1)
	s := doc.Sales[0]
	assert.Equal(t, backup.ID("7"), s.BatchID)
	assert.Equal(t, "House 4, Lahore", s.CustAddress)
	assert.Empty(t, s.CustDetail)
	assert.Equal(t, "2024-02-10", s.Date.Format("2006-01-02"))

	assert.NotNil(t, doc.Expenses)
	assert.Empty(t, doc.Expenses)
}

func TestDecode_V2(t *testing.T) {
	raw := `{
		"version": 2,
		"batches": [{"id": "b-1", "name": "Kurta", "targetQty": 10, "marginPerUnit": 5,
			"costs": [{"id": "c1", "name": "Stitching", "rate": 3, "qty": 1, "type": "PER_UNIT"}]}],
		"sales": [],
		"expenses": [{"id": "e-1", "date": "2024-05-01T00:00:00Z", "description": "Rent", "amount": 300, "category": "Rent", "type": "DEBIT"}]
	}`

	doc, err := backup.Decode(strings.NewReader(raw))
	require.NoError(t, err)

	require.Len(t, doc.Batches, 1)
	assert.Equal(t, backup.ID("b-1"), doc.Batches[0].ID)

	b := doc.Batches[0].ToBatch()
	assert.True(t, b.GrandTotal.Equal(d("30")))
	assert.True(t, b.SellingPrice.Equal(d("8")))

	require.Len(t, doc.Expenses, 1)
	assert.Equal(t, "2024-05-01", doc.Expenses[0].Date.Format("2006-01-02"))
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "FutureVersion", raw: `{"version": 3}`},
		{name: "NotJSON", raw: `batches,sales`},
		{name: "FractionalID", raw: `{"version": 1, "batches": [{"id": 1.5}]}`},
		{name: "BadDate", raw: `{"version": 2, "sales": [{"date": "10/02/2024"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := backup.Decode(strings.NewReader(tt.raw))
			assert.Error(t, err)
		})
	}

	_, err := backup.Decode(strings.NewReader(`{"version": 9}`))
	assert.ErrorIs(t, err, backup.ErrUnsupportedVersion)
}

func TestWrite_RoundTripsThroughDecode(t *testing.T) {
	doc, err := backup.Decode(strings.NewReader(v1Document))
	require.NoError(t, err)

	doc.Version = backup.CurrentVersion

	var buf bytes.Buffer
	require.NoError(t, backup.Write(&buf, doc))
	assert.Contains(t, buf.String(), `"id": "7"`)
	assert.Contains(t, buf.String(), `"date": "2024-02-10"`)

	again, err := backup.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc.Batches[0].Costs, again.Batches[0].Costs)
}
