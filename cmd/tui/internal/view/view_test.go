package view_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/batchbook/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/migration"
	"github.com/MrJamesThe3rd/batchbook/internal/report"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

func TestParseCostLines(t *testing.T) {
	type args struct {
		input string
	}

	type testCase struct {
		name    string
		args    args
		want    []batch.CostComponent
		wantErr string
	}

	tests := []testCase{
		{
			name: "fixed and per unit with blank lines",
			args: args{input: "Fabric, 100, 4, FIXED\n\n  Stitching,10,1,per_unit  \n"},
			want: []batch.CostComponent{
				{Name: "Fabric", Rate: decimal.RequireFromString("100"), Qty: decimal.RequireFromString("4"), Type: batch.TypeFixed},
				{Name: "Stitching", Rate: decimal.RequireFromString("10"), Qty: decimal.RequireFromString("1"), Type: batch.TypePerUnit},
			},
		},
		{
			name: "type defaults to fixed",
			args: args{input: "Lace, 2.5, 12"},
			want: []batch.CostComponent{
				{Name: "Lace", Rate: decimal.RequireFromString("2.5"), Qty: decimal.RequireFromString("12"), Type: batch.TypeFixed},
			},
		},
		{
			name: "empty input",
			args: args{input: "  \n"},
			want: nil,
		},
		{
			name:    "too few fields",
			args:    args{input: "Fabric, 100"},
			wantErr: "line 1",
		},
		{
			name:    "bad rate",
			args:    args{input: "Fabric, 100, 4\nDye, lots, 1"},
			wantErr: "line 2: invalid rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := view.ParseCostLines(tt.args.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			require.Len(t, got, len(tt.want))

			for i := range tt.want {
				assert.Equal(t, tt.want[i].Name, got[i].Name)
				assert.True(t, tt.want[i].Rate.Equal(got[i].Rate))
				assert.True(t, tt.want[i].Qty.Equal(got[i].Qty))
				assert.Equal(t, tt.want[i].Type, got[i].Type)
			}
		})
	}
}

func TestFormatCostLines_ParsesBack(t *testing.T) {
	costs := []batch.CostComponent{
		{Name: "Fabric", Rate: decimal.RequireFromString("100"), Qty: decimal.RequireFromString("4"), Type: batch.TypeFixed},
		{Name: "Stitching", Rate: decimal.RequireFromString("10"), Qty: decimal.RequireFromString("1"), Type: batch.TypePerUnit},
	}

	text := view.FormatCostLines(costs)
	assert.Equal(t, "Fabric, 100, 4, FIXED\nStitching, 10, 1, PER_UNIT", text)

	got, err := view.ParseCostLines(text)
	require.NoError(t, err)
	assert.Equal(t, batch.TypePerUnit, got[1].Type)
}

func TestNextStatus(t *testing.T) {
	tests := map[sale.Status]sale.Status{
		sale.StatusNew:       sale.StatusPending,
		sale.StatusPending:   sale.StatusShipped,
		sale.StatusShipped:   sale.StatusDelivered,
		sale.StatusDelivered: sale.StatusDelivered,
		sale.StatusCancelled: sale.StatusCancelled,
	}

	for from, want := range tests {
		assert.Equal(t, want, view.NextStatus(from), string(from))
	}
}

func TestPeriodRange(t *testing.T) {
	// A Thursday.
	now := time.Date(2026, time.March, 12, 15, 30, 0, 0, time.UTC)

	type testCase struct {
		name      string
		period    view.Period
		wantStart time.Time
		wantEnd   time.Time
		unbounded bool
	}

	tests := []testCase{
		{
			name:      "this week starts monday",
			period:    view.PeriodThisWeek,
			wantStart: time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, time.March, 12, 23, 59, 59, 0, time.UTC),
		},
		{
			name:      "this month",
			period:    view.PeriodThisMonth,
			wantStart: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, time.March, 12, 23, 59, 59, 0, time.UTC),
		},
		{
			name:      "last month covers february",
			period:    view.PeriodLastMonth,
			wantStart: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, time.February, 28, 23, 59, 59, 0, time.UTC),
		},
		{
			name:      "this year",
			period:    view.PeriodThisYear,
			wantStart: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, time.March, 12, 23, 59, 59, 0, time.UTC),
		},
		{
			name:      "all time",
			period:    view.PeriodAll,
			unbounded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := view.PeriodRange(tt.period, now)
			if tt.unbounded {
				assert.Nil(t, start)
				assert.Nil(t, end)

				return
			}

			require.NotNil(t, start)
			require.NotNil(t, end)
			assert.Equal(t, tt.wantStart, *start)
			assert.Equal(t, tt.wantEnd, *end)
		})
	}
}

func TestPeriodRange_SundayBelongsToEndingWeek(t *testing.T) {
	sunday := time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)

	start, _ := view.PeriodRange(view.PeriodThisWeek, sunday)
	require.NotNil(t, start)
	assert.Equal(t, time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC), *start)
}

func TestParseCustomRange(t *testing.T) {
	start, end, err := view.ParseCustomRange("2026-01-05", " 2026-01-10 ")
	require.NoError(t, err)
	assert.Equal(t, 5, start.Day())
	assert.Equal(t, 10, end.Day())
	assert.Equal(t, 23, end.Hour())

	_, _, err = view.ParseCustomRange("05/01/2026", "2026-01-10")
	assert.EqualError(t, err, "invalid start date (YYYY-MM-DD)")

	_, _, err = view.ParseCustomRange("2026-01-10", "2026-01-05")
	assert.EqualError(t, err, "end date is before start date")
}

func TestRenderTrend(t *testing.T) {
	day := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)

	out := view.RenderTrend([]report.DayTotal{
		{Date: day, Revenue: decimal.RequireFromString("50")},
		{Date: day.AddDate(0, 0, 1), Revenue: decimal.RequireFromString("100")},
		{Date: day.AddDate(0, 0, 2), Revenue: decimal.Zero},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, 15, strings.Count(lines[0], "█"))
	assert.Equal(t, 30, strings.Count(lines[1], "█"))
	assert.Equal(t, 0, strings.Count(lines[2], "█"))
	assert.True(t, strings.HasSuffix(lines[1], "100.00"))
}

func TestFormatReport(t *testing.T) {
	out := view.FormatReport(&migration.Report{Batches: 2, Sales: 5, Skipped: 1, OrphanSales: 1, DryRun: true})

	assert.True(t, strings.HasPrefix(out, "Dry run report"))
	assert.Contains(t, out, "Sales     5")
	assert.Contains(t, out, "Sales without a batch  1")
}
