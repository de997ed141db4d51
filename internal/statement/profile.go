package statement

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one signed column (e.g. "Montante" with value "-10,00").
	amountSingle amountMode = iota
	// amountSplit means separate debit and credit columns (e.g. "Débito"/"Crédito").
	amountSplit
)

// numberFormat is how a bank writes decimals.
type numberFormat int

const (
	// european uses "." for thousands and "," for decimals: "1.234,56".
	european numberFormat = iota
	// plain uses "," for thousands and "." for decimals: "1,234.56".
	plain
)

// Profile describes the column layout of a bank CSV export.
type Profile struct {
	Name        string
	DateCol     string
	DateLayouts []string
	DescCol     string
	AmountMode  amountMode
	AmountCol   string
	DebitCol    string
	CreditCol   string
	Numbers     numberFormat
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

var ptDates = []string{"02-01-2006", "02/01/2006"}

// profiles is tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:        "cgd-cartao",
		DateCol:     "Data",
		DateLayouts: ptDates,
		DescCol:     "Descrição",
		AmountMode:  amountSplit,
		DebitCol:    "Débito",
		CreditCol:   "Crédito",
		Numbers:     european,
	},
	{
		Name:        "cgd-extrato",
		DateCol:     "Data mov.",
		DateLayouts: ptDates,
		DescCol:     "Descrição",
		AmountMode:  amountSingle,
		AmountCol:   "Movimento",
		Numbers:     european,
	},
	{
		Name:        "cgd-conta",
		DateCol:     "Data mov.",
		DateLayouts: ptDates,
		DescCol:     "Descrição",
		AmountMode:  amountSingle,
		AmountCol:   "Montante",
		Numbers:     european,
	},
	{
		Name:        "generic-split",
		DateCol:     "Date",
		DateLayouts: []string{"2006-01-02", "02/01/2006", "02-01-2006"},
		DescCol:     "Description",
		AmountMode:  amountSplit,
		DebitCol:    "Debit",
		CreditCol:   "Credit",
		Numbers:     plain,
	},
	{
		Name:        "generic",
		DateCol:     "Date",
		DateLayouts: []string{"2006-01-02", "02/01/2006", "02-01-2006"},
		DescCol:     "Description",
		AmountMode:  amountSingle,
		AmountCol:   "Amount",
		Numbers:     plain,
	},
}
