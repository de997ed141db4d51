// Package report derives the owner's dashboard figures and the sales
// spreadsheet from batches and sales.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

const (
	trendDays  = 7
	topBatches = 5
)

//go:generate mockgen -source=dashboard.go -destination=source_mock.go -package=report
type Source interface {
	ListBatches(ctx context.Context, filter batch.ListFilter) ([]*batch.Batch, error)
	ListSales(ctx context.Context, filter sale.ListFilter) ([]*sale.Sale, error)
}

type Service struct {
	source Source
	now    func() time.Time
}

func NewService(source Source) *Service {
	return &Service{source: source, now: time.Now}
}

type DayTotal struct {
	Date    time.Time
	Revenue decimal.Decimal
	Profit  decimal.Decimal
}

type BatchProfit struct {
	BatchID string
	Name    string
	Profit  decimal.Decimal
}

type Dashboard struct {
	Revenue   decimal.Decimal
	Profit    decimal.Decimal
	SaleCount int
	// UnsoldValue is remaining stock valued at unit cost. Oversold batches
	// count as zero.
	UnsoldValue decimal.Decimal
	// Trend has one entry per day, oldest first, ending today.
	Trend []DayTotal
	// Top holds the most profitable batches, best first. Batches without
	// profit are left out.
	Top []BatchProfit
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	batches, sales, err := s.load(ctx, sale.ListFilter{})
	if err != nil {
		return nil, err
	}

	d := Summarize(batches, sales, s.now())

	return &d, nil
}

func (s *Service) load(ctx context.Context, filter sale.ListFilter) ([]*batch.Batch, []*sale.Sale, error) {
	batches, err := s.source.ListBatches(ctx, batch.ListFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("listing batches: %w", err)
	}

	sales, err := s.source.ListSales(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("listing sales: %w", err)
	}

	return batches, sales, nil
}

// Summarize computes the dashboard as of now. Cancelled sales are ignored
// everywhere.
func Summarize(batches []*batch.Batch, sales []*sale.Sale, now time.Time) Dashboard {
	var d Dashboard

	active := make([]*sale.Sale, 0, len(sales))

	for _, s := range sales {
		if !s.Active() {
			continue
		}

		active = append(active, s)
		d.Revenue = d.Revenue.Add(s.Price)
		d.Profit = d.Profit.Add(s.Profit)
	}

	d.SaleCount = len(active)

	for _, b := range batches {
		stock := sale.Reconcile(b, active, "")
		if stock.Remaining > 0 {
			d.UnsoldValue = d.UnsoldValue.Add(b.UnitCost.Mul(decimal.NewFromInt(int64(stock.Remaining))))
		}
	}

	d.Trend = trend(active, now)
	d.Top = top(batches, active)

	return d
}

func day(t time.Time, loc *time.Location) time.Time {
	y, m, dd := t.In(loc).Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, loc)
}

func trend(sales []*sale.Sale, now time.Time) []DayTotal {
	loc := now.Location()
	today := day(now, loc)

	out := make([]DayTotal, trendDays)
	index := make(map[time.Time]int, trendDays)

	for i := range out {
		date := today.AddDate(0, 0, i-(trendDays-1))
		out[i].Date = date
		index[date] = i
	}

	for _, s := range sales {
		// Sale dates are calendar days; read them in UTC so they do not shift.
		y, m, dd := s.Date.UTC().Date()

		i, ok := index[time.Date(y, m, dd, 0, 0, 0, 0, loc)]
		if !ok {
			continue
		}

		out[i].Revenue = out[i].Revenue.Add(s.Price)
		out[i].Profit = out[i].Profit.Add(s.Profit)
	}

	return out
}

func top(batches []*batch.Batch, sales []*sale.Sale) []BatchProfit {
	profit := make(map[string]decimal.Decimal, len(batches))
	for _, s := range sales {
		profit[s.BatchID] = profit[s.BatchID].Add(s.Profit)
	}

	var out []BatchProfit

	for _, b := range batches {
		p := profit[b.ID]
		if !p.IsPositive() {
			continue
		}

		out = append(out, BatchProfit{BatchID: b.ID, Name: b.Name, Profit: p})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Profit.GreaterThan(out[j].Profit)
	})

	if len(out) > topBatches {
		out = out[:topBatches]
	}

	return out
}
