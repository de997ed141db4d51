package statement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseNumber reads a signed amount in the given format.
// "1.234,56" (european) and "1,234.56" (plain) both give 1234.56.
func parseNumber(s string, format numberFormat) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), " ", "")

	switch format {
	case european:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case plain:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}
