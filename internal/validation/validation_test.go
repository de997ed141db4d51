package validation_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/batchbook/internal/validation"
)

type form struct {
	BatchID  string `validate:"required"`
	CustName string `validate:"required"`
	Qty      int    `validate:"gte=1"`
}

func TestStruct(t *testing.T) {
	verr := validation.Struct(form{Qty: 0})
	require.Error(t, verr.OrNil())

	assert.Equal(t, map[string]string{
		"batch_id":  "required",
		"cust_name": "required",
		"qty":       "gte",
	}, verr.Fields)
}

func TestStruct_Valid(t *testing.T) {
	verr := validation.Struct(form{BatchID: "b1", CustName: "Asha", Qty: 2})
	assert.NoError(t, verr.OrNil())
}

func TestError_AddAndAs(t *testing.T) {
	verr := validation.Struct(form{BatchID: "b1", CustName: "Asha", Qty: 1})
	verr.Add("base_amount", "gt")
	verr.Add("base_amount", "required")

	err := fmt.Errorf("saving sale: %w", verr.OrNil())

	got, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, "gt", got.Fields["base_amount"])
	assert.Equal(t, "validation failed: base_amount: gt", got.Error())
}
