package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("ledger entry not found")

// DefaultCategory is used when an entry is saved without one.
const DefaultCategory = "General"

// Type is the direction of cash movement.
type Type string

const (
	// TypeCredit is money paid in, such as a capital deposit.
	TypeCredit Type = "CREDIT"
	// TypeDebit is money paid out, such as an expense.
	TypeDebit Type = "DEBIT"
)

func (t Type) Valid() bool {
	return t == TypeCredit || t == TypeDebit
}

// Entry is a standalone deposit or expense. It is unrelated to batches and
// sales.
type Entry struct {
	ID          string
	Date        time.Time
	Description string
	// Amount is always positive; Type carries the sign.
	Amount   decimal.Decimal
	Category string
	Type     Type

	LegacyID  string
	CreatedAt time.Time
}
