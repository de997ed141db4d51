package batch

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// legacyItem is one row of the fixed cost sheet used before cost components
// existed. Old records store its price and quantity as p_<key> and q_<key>.
type legacyItem struct {
	key   string
	label string
}

var legacyItems = []legacyItem{
	{key: "mat", label: "Material Fabric"},
	{key: "lin", label: "Lining"},
	{key: "mship", label: "Material Shipping"},
	{key: "vship", label: "Vendor Shipping"},
	{key: "stitch", label: "Stitching"},
	{key: "pack", label: "Packaging"},
	{key: "cship", label: "Customer Shipment"},
}

// legacyTargetKey held the production target on the old cost sheet.
const legacyTargetKey = "q_stitch"

// UpgradeLegacy converts an old cost sheet into FIXED components. The old
// sheet priced every row as price × quantity, which is exactly FIXED. Keys
// outside the known sheet are kept, named after their suffix. The returned
// target is targetQty when positive, else the stitching quantity.
func UpgradeLegacy(inputs map[string]float64, targetQty int) ([]CostComponent, int) {
	if targetQty < 1 {
		targetQty = int(inputs[legacyTargetKey])
	}

	known := make(map[string]bool, len(legacyItems))
	costs := make([]CostComponent, 0, len(legacyItems))

	for _, item := range legacyItems {
		known[item.key] = true

		if c, ok := legacyComponent(inputs, item.key, item.label); ok {
			costs = append(costs, c)
		}
	}

	var extra []string

	for k := range inputs {
		key, found := strings.CutPrefix(k, "p_")
		if !found {
			key, found = strings.CutPrefix(k, "q_")
		}

		if !found || known[key] {
			continue
		}

		known[key] = true
		extra = append(extra, key)
	}

	sort.Strings(extra)

	for _, key := range extra {
		if c, ok := legacyComponent(inputs, key, key); ok {
			costs = append(costs, c)
		}
	}

	return costs, EffectiveTarget(targetQty)
}

func legacyComponent(inputs map[string]float64, key, label string) (CostComponent, bool) {
	rate, hasRate := inputs["p_"+key]
	qty, hasQty := inputs["q_"+key]

	if !hasRate && !hasQty {
		return CostComponent{}, false
	}

	return CostComponent{
		ID:   key,
		Name: label,
		Rate: decimal.NewFromFloat(rate),
		Qty:  decimal.NewFromFloat(qty),
		Type: TypeFixed,
	}, true
}
