package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/live"
	"github.com/MrJamesThe3rd/batchbook/internal/report"
)

const trendBarWidth = 30

type DashboardModel struct {
	CommonModel
	reportService *report.Service

	dashboard *report.Dashboard
	loading   bool
	err       error
}

func NewDashboardModel(reportSvc *report.Service) DashboardModel {
	return DashboardModel{reportService: reportSvc, loading: true}
}

func (m DashboardModel) Title() string     { return "Dashboard" }
func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDashboardMsg:
		m.loading = false
		m.dashboard = msg.dashboard
		m.err = msg.err

		return m, nil

	case ChangedMsg:
		if msg.Kind == live.KindBatches || msg.Kind == live.KindSales {
			return m, m.loadCmd()
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading dashboard...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	d := m.dashboard

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Revenue", FormatMoney(d.Revenue)),
		card("Profit", FormatMoney(d.Profit)),
		card("Sales", fmt.Sprintf("%d", d.SaleCount)),
		card("Unsold stock", FormatMoney(d.UnsoldValue)),
	)

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		cards,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top,
			sidePanel("Last 7 days", RenderTrend(d.Trend)),
			sidePanel("Top batches", renderTop(d.Top)),
		),
	))
}

func card(title, value string) string {
	return lipgloss.NewStyle().
		Padding(0, 2).
		MarginRight(1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(lipgloss.NewStyle().Faint(true).Render(title) + "\n" + activeStyle(value))
}

// RenderTrend draws one revenue bar per day, scaled to the best day.
func RenderTrend(days []report.DayTotal) string {
	peak := decimal.Zero
	for _, d := range days {
		peak = decimal.Max(peak, d.Revenue)
	}

	var sb strings.Builder

	for _, d := range days {
		width := 0
		if peak.IsPositive() {
			width = int(d.Revenue.Div(peak).Mul(decimal.NewFromInt(trendBarWidth)).IntPart())
		}

		fmt.Fprintf(&sb, "%s %-*s %s\n", d.Date.Format("Mon 02"), trendBarWidth, strings.Repeat("█", width), FormatMoney(d.Revenue))
	}

	return sb.String()
}

func renderTop(top []report.BatchProfit) string {
	if len(top) == 0 {
		return lipgloss.NewStyle().Faint(true).Render("No profitable batches yet.")
	}

	var sb strings.Builder
	for i, b := range top {
		fmt.Fprintf(&sb, "%d. %-24s %s\n", i+1, b.Name, FormatMoney(b.Profit))
	}

	return sb.String()
}

// Messages

type loadDashboardMsg struct {
	dashboard *report.Dashboard
	err       error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := m.reportService.Dashboard(ctx)

		return loadDashboardMsg{dashboard: d, err: err}
	}
}
