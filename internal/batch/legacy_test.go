package batch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
)

func TestUpgradeLegacy(t *testing.T) {
	inputs := map[string]float64{
		"p_mat":    1200,
		"q_mat":    1,
		"p_stitch": 40,
		"q_stitch": 25,
		"p_zip":    2,
		"q_zip":    25,
	}

	costs, target := batch.UpgradeLegacy(inputs, 0)

	assert.Equal(t, 25, target)
	require.Len(t, costs, 3)

	assert.Equal(t, "Material Fabric", costs[0].Name)
	assert.Equal(t, "Stitching", costs[1].Name)
	assert.Equal(t, "zip", costs[2].Name)

	for _, c := range costs {
		assert.Equal(t, batch.TypeFixed, c.Type)
	}

	got := batch.Compute(costs, target, d("0"))
	assert.True(t, d("2250").Equal(got.GrandTotal), got.GrandTotal.String())
	assert.True(t, d("90").Equal(got.UnitCost), got.UnitCost.String())
}

func TestUpgradeLegacy_ExplicitTargetWins(t *testing.T) {
	_, target := batch.UpgradeLegacy(map[string]float64{"q_stitch": 30}, 12)
	assert.Equal(t, 12, target)
}

func TestUpgradeLegacy_NoInputs(t *testing.T) {
	costs, target := batch.UpgradeLegacy(nil, 0)

	assert.Empty(t, costs)
	assert.Equal(t, 1, target)
}
