package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/live"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

type salesState int

const (
	salesStateBrowse salesState = iota
	salesStateForm
	salesStateConfirmDelete
)

var dateFilterLabels = []string{"All Time", "This Month", "Last Month"}

type SalesModel struct {
	CommonModel
	saleService  *sale.Service
	batchService *batch.Service

	state   salesState
	table   table.Model
	form    *huh.Form
	sales   []*sale.Sale
	batches []*batch.Batch
	names   map[string]string

	statusFilterIdx int
	dateFilterIdx   int

	filter  sale.ListFilter
	loading bool
	err     error
	status  string

	fields *saleFields
}

type saleFields struct {
	batchID  string
	customer string
	phone    string
	address  string
	qty      string
	amount   string
	discount string
}

func NewSalesModel(saleSvc *sale.Service, batchSvc *batch.Service) SalesModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Customer", Width: 20},
		{Title: "Batch", Width: 20},
		{Title: "Qty", Width: 5},
		{Title: "Price", Width: 11},
		{Title: "Profit", Width: 11},
		{Title: "Status", Width: 10},
	}

	return SalesModel{
		saleService:  saleSvc,
		batchService: batchSvc,
		table:        newTable(columns),
		loading:      true,
	}
}

func (m SalesModel) Title() string { return "Sales" }

func (m SalesModel) ShortHelp() string {
	switch m.state {
	case salesStateForm:
		return "Navigate form | Esc: cancel"
	case salesStateConfirmDelete:
		return "y: delete | any other key: keep"
	}

	return "Esc: back | n: new | t: next status | x: delete | s: status filter | d: date filter | r: refresh"
}

func (m SalesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SalesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSalesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.sales = msg.sales
		m.batches = msg.batches
		m.names = make(map[string]string, len(msg.batches))
		for _, b := range msg.batches {
			m.names[b.ID] = b.Name
		}
		m.refreshTable()

		return m, nil

	case ChangedMsg:
		if msg.Kind == live.KindBatches || msg.Kind == live.KindSales {
			return m, m.loadCmd()
		}

		return m, nil

	case salesSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case salesStateForm:
		return m.updateForm(msg)
	case salesStateConfirmDelete:
		return m.updateConfirm(msg)
	}

	return m.updateBrowse(msg)
}

func (m SalesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "n":
			return m.enterForm()
		case "t":
			return m, m.advanceStatusCmd()
		case "x":
			if m.selected() != nil {
				m.state = salesStateConfirmDelete
			}

			return m, nil
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % (len(sale.Statuses) + 1)
			m.applyFilter(time.Now())

			return m, m.loadCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % len(dateFilterLabels)
			m.applyFilter(time.Now())

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m SalesModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.state = salesStateBrowse

	s := m.selected()
	if keyMsg.String() != "y" || s == nil {
		return m, nil
	}

	return m, func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.saleService.Delete(ctx, s.ID); err != nil {
			return salesSaveMsg{err: err}
		}

		return salesSaveMsg{status: fmt.Sprintf("Deleted sale to %s.", s.CustName)}
	}
}

func (m SalesModel) enterForm() (tea.Model, tea.Cmd) {
	if len(m.batches) == 0 {
		m.status = "Create a batch first."
		return m, nil
	}

	m.fields = &saleFields{batchID: m.batches[0].ID, qty: "1"}

	options := make([]huh.Option[string], len(m.batches))
	for i, b := range m.batches {
		options[i] = huh.NewOption(b.Name, b.ID)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("batch").
				Title("Batch").
				Options(options...).
				Value(&m.fields.batchID),

			huh.NewInput().
				Key("customer").
				Title("Customer").
				Value(&m.fields.customer).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("customer cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("phone").
				Title("Phone").
				Value(&m.fields.phone),

			huh.NewInput().
				Key("address").
				Title("Address").
				Value(&m.fields.address),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("qty").
				Title("Quantity").
				Value(&m.fields.qty).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 1 {
						return errors.New("enter a whole number of at least 1")
					}
					return nil
				}),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Description("Leave empty for the suggested price").
				Value(&m.fields.amount).
				Validate(validOptionalAmount),

			huh.NewInput().
				Key("discount").
				Title("Discount").
				Placeholder("0").
				Value(&m.fields.discount).
				Validate(validOptionalAmount),
		),
	).WithWidth(48).WithShowHelp(false)

	m.state = salesStateForm
	m.table.Blur()

	return m, m.form.Init()
}

func (m SalesModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = salesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	save := m.saveCmd()
	m.state = salesStateBrowse
	m.form = nil
	m.table.Focus()

	return m, save
}

func (m SalesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading sales...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	statusLabel := "All"
	if m.filter.Status != nil {
		statusLabel = string(*m.filter.Status)
	}

	header := fmt.Sprintf(
		"Filter: [s] Status: %s | [d] Date: %s",
		activeStyle(statusLabel),
		activeStyle(dateFilterLabels[m.dateFilterIdx]),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	switch m.state {
	case salesStateForm:
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, sidePanel("New Sale", m.form.View()))
	case salesStateConfirmDelete:
		if s := m.selected(); s != nil {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content,
				sidePanel("Delete Sale", fmt.Sprintf("Delete the sale to %s on %s?\n\n(y to confirm)", s.CustName, FormatDate(s.Date))))
		}
	default:
		if s := m.selected(); s != nil {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, sidePanel(s.CustName, m.detail(s)))
		}
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m SalesModel) detail(s *sale.Sale) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Phone     %s\nAddress   %s\n\n", s.CustPhone, s.CustAddress)
	fmt.Fprintf(&sb, "Unit cost %s\nDiscount  %s\nPrice     %s\nProfit    %s\n",
		FormatMoney(s.UnitCost), FormatMoney(s.Discount), FormatMoney(s.Price), FormatMoney(s.Profit))

	if s.Courier != "" || s.TrackingNumber != "" {
		fmt.Fprintf(&sb, "\nCourier   %s %s\n", s.Courier, s.TrackingNumber)
	}

	if s.PaymentScreenshot != "" {
		sb.WriteString("\nPayment screenshot attached\n")
	}

	if s.Notes != "" {
		fmt.Fprintf(&sb, "\n%s\n", s.Notes)
	}

	return sb.String()
}

func (m SalesModel) batchName(id string) string {
	if name, ok := m.names[id]; ok {
		return name
	}

	return sale.UnknownBatchName
}

func (m SalesModel) selected() *sale.Sale {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.sales) {
		return nil
	}

	return m.sales[idx]
}

func (m *SalesModel) applyFilter(now time.Time) {
	m.filter.Status = nil
	if m.statusFilterIdx > 0 {
		m.filter.Status = new(sale.Statuses[m.statusFilterIdx-1])
	}

	switch m.dateFilterIdx {
	case 1:
		s := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		e := s.AddDate(0, 1, 0).Add(-time.Nanosecond)
		m.filter.StartDate = &s
		m.filter.EndDate = &e
	case 2:
		s := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		e := s.AddDate(0, 1, 0).Add(-time.Nanosecond)
		m.filter.StartDate = &s
		m.filter.EndDate = &e
	default:
		m.filter.StartDate = nil
		m.filter.EndDate = nil
	}
}

func (m *SalesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.sales))
	for _, s := range m.sales {
		rows = append(rows, table.Row{
			FormatDate(s.Date),
			s.CustName,
			m.batchName(s.BatchID),
			strconv.Itoa(s.Qty),
			FormatMoney(s.Price),
			FormatMoney(s.Profit),
			string(s.Status),
		})
	}
	m.table.SetRows(rows)
}

// NextStatus is the status a sale moves to when advanced. Delivered and
// Cancelled are final.
func NextStatus(s sale.Status) sale.Status {
	switch s {
	case sale.StatusNew:
		return sale.StatusPending
	case sale.StatusPending:
		return sale.StatusShipped
	case sale.StatusShipped:
		return sale.StatusDelivered
	}

	return s
}

// Messages

type loadSalesMsg struct {
	sales   []*sale.Sale
	batches []*batch.Batch
	err     error
}

func (m SalesModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		sales, err := m.saleService.List(ctx, filter)
		if err != nil {
			return loadSalesMsg{err: err}
		}

		batches, err := m.batchService.List(ctx, batch.ListFilter{})
		if err != nil {
			return loadSalesMsg{err: err}
		}

		return loadSalesMsg{sales: sales, batches: batches}
	}
}

type salesSaveMsg struct {
	status string
	err    error
}

func (m SalesModel) advanceStatusCmd() tea.Cmd {
	s := m.selected()
	if s == nil {
		return nil
	}

	next := NextStatus(s.Status)
	if next == s.Status {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.saleService.UpdateStatus(ctx, s.ID, next); err != nil {
			return salesSaveMsg{err: err}
		}

		return salesSaveMsg{status: fmt.Sprintf("%s: %s -> %s", s.CustName, s.Status, next)}
	}
}

func (m SalesModel) saveCmd() tea.Cmd {
	f := *m.fields
	qty, _ := strconv.Atoi(strings.TrimSpace(f.qty))

	params := sale.CreateParams{
		BatchID:     f.batchID,
		Date:        time.Now(),
		CustName:    strings.TrimSpace(f.customer),
		CustPhone:   strings.TrimSpace(f.phone),
		CustAddress: strings.TrimSpace(f.address),
		Qty:         qty,
		Discount:    optionalAmount(f.discount),
		Status:      sale.StatusNew,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		params.BaseAmount = optionalAmount(f.amount)
		if strings.TrimSpace(f.amount) == "" {
			params.BaseAmount = m.saleService.Suggest(ctx, params.BatchID, qty)
		}

		res, err := m.saleService.Record(ctx, params)
		if err != nil {
			return salesSaveMsg{err: err}
		}

		status := fmt.Sprintf("Recorded %s for %s, profit %s", FormatMoney(res.Sale.Price), res.Sale.CustName, FormatMoney(res.Sale.Profit))
		if res.Oversold {
			status += fmt.Sprintf(" (oversold: only %d were left)", res.Stock.Remaining)
		}

		return salesSaveMsg{status: status}
	}
}
