// Package statement parses bank CSV exports into ledger entries.
package statement

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
	"github.com/MrJamesThe3rd/batchbook/internal/textenc"
)

var ErrUnknownFormat = errors.New("no matching statement format found")

// Parser reads bank CSV exports. The column layout is detected by matching
// header rows against known profiles, and the field separator by sniffing.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]ledger.CreateParams, error) {
	utf8r, _, err := textenc.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	reader := csv.NewReader(br)
	reader.Comma = sniffComma(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, ErrUnknownFormat
	}

	return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
}

// sniffComma picks ';' unless the opening chunk has more commas than
// semicolons.
func sniffComma(br *bufio.Reader) rune {
	head, _ := br.Peek(2048)

	if strings.Count(string(head), ",") > strings.Count(string(head), ";")*2 {
		return ','
	}

	return ';'
}

type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]ledger.CreateParams, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	var out []ledger.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 2

		date, ok := parseDate(row, dateIdx, p.DateLayouts)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, typ, ok := parseAmount(p, cols, row)
		if !ok {
			continue
		}

		out = append(out, ledger.CreateParams{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Type:        typ,
		})
	}

	return out, nil
}

// parseDate returns false for footer rows and other non-dates.
func parseDate(row []string, idx int, layouts []string) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, ledger.Type, bool) {
	switch p.AmountMode {
	case amountSingle:
		return parseSingleAmount(row, cols[p.AmountCol], p.Numbers)
	case amountSplit:
		return parseSplitAmount(row, cols[p.DebitCol], cols[p.CreditCol], p.Numbers)
	}

	return decimal.Zero, "", false
}

// parseSingleAmount handles one signed column: negatives are debits.
func parseSingleAmount(row []string, idx int, format numberFormat) (decimal.Decimal, ledger.Type, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, "", false
	}

	amount, err := parseNumber(s, format)
	if err != nil || amount.IsZero() {
		return decimal.Zero, "", false
	}

	if amount.IsNegative() {
		return amount.Neg(), ledger.TypeDebit, true
	}

	return amount, ledger.TypeCredit, true
}

func parseSplitAmount(row []string, debitIdx, creditIdx int, format numberFormat) (decimal.Decimal, ledger.Type, bool) {
	if s := cellValue(row, debitIdx); s != "" {
		amount, err := parseNumber(s, format)
		if err == nil && !amount.IsZero() {
			return amount.Abs(), ledger.TypeDebit, true
		}
	}

	if s := cellValue(row, creditIdx); s != "" {
		amount, err := parseNumber(s, format)
		if err == nil && !amount.IsZero() {
			return amount.Abs(), ledger.TypeCredit, true
		}
	}

	return decimal.Zero, "", false
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
