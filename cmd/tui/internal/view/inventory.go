package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/batchbook/internal/batch"
	"github.com/MrJamesThe3rd/batchbook/internal/live"
	"github.com/MrJamesThe3rd/batchbook/internal/sale"
)

type inventoryState int

const (
	inventoryStateBrowse inventoryState = iota
	inventoryStateSearch
	inventoryStateForm
	inventoryStateConfirmDelete
)

type InventoryModel struct {
	CommonModel
	batchService *batch.Service
	saleService  *sale.Service

	state   inventoryState
	table   table.Model
	search  textinput.Model
	form    *huh.Form
	batches []*batch.Batch
	stock   map[string]sale.Stock
	filter  batch.ListFilter

	// editing is nil while creating.
	editing *batch.Batch
	loading bool
	err     error
	status  string

	// Form bindings live behind a pointer so they survive model copies.
	fields *batchFields
}

type batchFields struct {
	name   string
	target string
	margin string
	costs  string
}

func NewInventoryModel(batchSvc *batch.Service, saleSvc *sale.Service) InventoryModel {
	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Target", Width: 8},
		{Title: "Sold", Width: 6},
		{Title: "Left", Width: 6},
		{Title: "Unit Cost", Width: 11},
		{Title: "Price", Width: 11},
		{Title: "Total", Width: 12},
	}

	ti := textinput.New()
	ti.Placeholder = "batch name"
	ti.Prompt = "Search: "
	ti.CharLimit = 64

	return InventoryModel{
		batchService: batchSvc,
		saleService:  saleSvc,
		table:        newTable(columns),
		search:       ti,
		loading:      true,
	}
}

func (m InventoryModel) Title() string { return "Inventory" }

func (m InventoryModel) ShortHelp() string {
	switch m.state {
	case inventoryStateSearch:
		return "Enter: apply | Esc: clear"
	case inventoryStateForm:
		return "Navigate form | Esc: cancel"
	case inventoryStateConfirmDelete:
		return "y: delete | any other key: keep"
	}

	return "Esc: back | n: new | e: edit | x: delete | /: search | r: refresh"
}

func (m InventoryModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InventoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInventoryMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.batches = msg.batches
		m.stock = msg.stock
		m.refreshTable()

		return m, nil

	case ChangedMsg:
		if msg.Kind == live.KindBatches || msg.Kind == live.KindSales {
			return m, m.loadCmd()
		}

		return m, nil

	case inventorySaveMsg:
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
	case inventoryStateSearch:
		return m.updateSearch(msg)
	case inventoryStateForm:
		return m.updateForm(msg)
	case inventoryStateConfirmDelete:
		return m.updateConfirm(msg)
	}

	return m.updateBrowse(msg)
}

func (m InventoryModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "n":
			return m.enterForm(nil)
		case "e":
			if b := m.selected(); b != nil {
				return m.enterForm(b)
			}

			return m, nil
		case "x":
			if m.selected() != nil {
				m.state = inventoryStateConfirmDelete
			}

			return m, nil
		case "/":
			m.state = inventoryStateSearch
			m.table.Blur()

			return m, m.search.Focus()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InventoryModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			m.filter.Query = strings.TrimSpace(m.search.Value())
			m.state = inventoryStateBrowse
			m.search.Blur()
			m.table.Focus()

			return m, m.loadCmd()
		case tea.KeyEsc:
			m.search.SetValue("")
			m.filter.Query = ""
			m.state = inventoryStateBrowse
			m.search.Blur()
			m.table.Focus()

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	return m, cmd
}

func (m InventoryModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.state = inventoryStateBrowse

	b := m.selected()
	if keyMsg.String() != "y" || b == nil {
		return m, nil
	}

	return m, func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.batchService.Delete(ctx, b.ID); err != nil {
			return inventorySaveMsg{err: err}
		}

		return inventorySaveMsg{status: fmt.Sprintf("Deleted %s. Its sales are kept.", b.Name)}
	}
}

func (m InventoryModel) enterForm(b *batch.Batch) (tea.Model, tea.Cmd) {
	m.editing = b
	m.fields = &batchFields{}

	if b != nil {
		m.fields.name = b.Name
		m.fields.target = strconv.Itoa(b.TargetQty)
		m.fields.margin = b.MarginPerUnit.String()
		m.fields.costs = FormatCostLines(b.Costs)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Value(&m.fields.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("target").
				Title("Target quantity").
				Value(&m.fields.target).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 1 {
						return errors.New("enter a whole number of at least 1")
					}
					return nil
				}),

			huh.NewInput().
				Key("margin").
				Title("Margin per unit").
				Placeholder("0").
				Value(&m.fields.margin).
				Validate(validOptionalAmount),

			huh.NewText().
				Key("costs").
				Title("Costs").
				Description("One per line: name, rate, qty, FIXED or PER_UNIT").
				Lines(6).
				Value(&m.fields.costs).
				Validate(func(s string) error {
					costs, err := ParseCostLines(s)
					if err != nil {
						return err
					}
					if len(costs) == 0 {
						return errors.New("add at least one cost line")
					}
					return nil
				}),
		),
	).WithWidth(48).WithShowHelp(false)

	m.state = inventoryStateForm
	m.table.Blur()

	return m, m.form.Init()
}

func (m InventoryModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = inventoryStateBrowse
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
	m.state = inventoryStateBrowse
	m.form = nil
	m.table.Focus()

	return m, save
}

func (m InventoryModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading batches...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	query := "none"
	if m.filter.Query != "" {
		query = m.filter.Query
	}

	header := fmt.Sprintf("Batches: %d | [/] Search: %s", len(m.batches), activeStyle(query))
	if m.state == inventoryStateSearch {
		header = m.search.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	switch m.state {
	case inventoryStateForm:
		title := "New Batch"
		if m.editing != nil {
			title = "Edit Batch"
		}

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, sidePanel(title, m.form.View()))
	case inventoryStateConfirmDelete:
		if b := m.selected(); b != nil {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content,
				sidePanel("Delete Batch", fmt.Sprintf("Delete %q? Sales recorded against it stay.\n\n(y to confirm)", b.Name)))
		}
	default:
		if b := m.selected(); b != nil {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, sidePanel(b.Name, m.costBreakdown(b)))
		}
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m InventoryModel) costBreakdown(b *batch.Batch) string {
	var sb strings.Builder

	for _, c := range b.Costs {
		fmt.Fprintf(&sb, "%-16s %8s x %-6s %-9s %10s\n",
			c.Name, FormatMoney(c.Rate), c.Qty.String(), c.Type, FormatMoney(batch.LineTotal(c, b.TargetQty)))
	}

	st := m.stock[b.ID]

	fmt.Fprintf(&sb, "\nGrand total  %s\nUnit cost    %s\nSell price   %s\nSold         %d (%s%%)",
		FormatMoney(b.GrandTotal), FormatMoney(b.UnitCost), FormatMoney(b.SellingPrice), st.Sold, st.Progress.StringFixed(0))

	if st.Remaining < 0 {
		sb.WriteString("\n" + errorStyle(fmt.Sprintf("Oversold by %d", -st.Remaining)))
	}

	return sb.String()
}

func (m InventoryModel) selected() *batch.Batch {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.batches) {
		return nil
	}

	return m.batches[idx]
}

func (m *InventoryModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.batches))
	for _, b := range m.batches {
		st := m.stock[b.ID]
		rows = append(rows, table.Row{
			b.Name,
			strconv.Itoa(b.TargetQty),
			strconv.Itoa(st.Sold),
			strconv.Itoa(st.Remaining),
			FormatMoney(b.UnitCost),
			FormatMoney(b.SellingPrice),
			FormatMoney(b.GrandTotal),
		})
	}
	m.table.SetRows(rows)
}

// ParseCostLines reads one cost component per non-blank line, written as
// "name, rate, qty, type". The type may be left out and defaults to FIXED.
func ParseCostLines(s string) ([]batch.CostComponent, error) {
	var costs []batch.CostComponent

	for i, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) < 3 || len(fields) > 4 {
			return nil, fmt.Errorf("line %d: want name, rate, qty[, type]", i+1)
		}

		rate, err := decimal.NewFromString(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid rate", i+1)
		}

		qty, err := decimal.NewFromString(strings.TrimSpace(fields[2]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid qty", i+1)
		}

		typ := batch.TypeFixed
		if len(fields) == 4 && strings.EqualFold(strings.TrimSpace(fields[3]), string(batch.TypePerUnit)) {
			typ = batch.TypePerUnit
		}

		costs = append(costs, batch.CostComponent{
			Name: strings.TrimSpace(fields[0]),
			Rate: rate,
			Qty:  qty,
			Type: typ,
		})
	}

	return costs, nil
}

func FormatCostLines(costs []batch.CostComponent) string {
	lines := make([]string, len(costs))
	for i, c := range costs {
		lines[i] = fmt.Sprintf("%s, %s, %s, %s", c.Name, c.Rate.String(), c.Qty.String(), c.Type)
	}

	return strings.Join(lines, "\n")
}

func validOptionalAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	if _, err := decimal.NewFromString(strings.TrimSpace(s)); err != nil {
		return errors.New("enter a number")
	}

	return nil
}

func optionalAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}

	return d
}

// Messages

type loadInventoryMsg struct {
	batches []*batch.Batch
	stock   map[string]sale.Stock
	err     error
}

func (m InventoryModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		batches, err := m.batchService.List(ctx, filter)
		if err != nil {
			return loadInventoryMsg{err: err}
		}

		sales, err := m.saleService.List(ctx, sale.ListFilter{})
		if err != nil {
			return loadInventoryMsg{err: err}
		}

		stock := make(map[string]sale.Stock, len(batches))
		for _, b := range batches {
			stock[b.ID] = sale.Reconcile(b, sales, "")
		}

		return loadInventoryMsg{batches: batches, stock: stock}
	}
}

type inventorySaveMsg struct {
	status string
	err    error
}

func (m InventoryModel) saveCmd() tea.Cmd {
	editing := m.editing
	target, _ := strconv.Atoi(strings.TrimSpace(m.fields.target))
	costs, _ := ParseCostLines(m.fields.costs)

	params := batch.CreateParams{
		Name:          strings.TrimSpace(m.fields.name),
		TargetQty:     target,
		Costs:         costs,
		MarginPerUnit: optionalAmount(m.fields.margin),
	}

	if editing != nil {
		params.IsPublic = editing.IsPublic
		params.PublicName = editing.PublicName
		params.Description = editing.Description
		params.Category = editing.Category
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var (
			b   *batch.Batch
			err error
		)

		if editing == nil {
			b, err = m.batchService.Create(ctx, params)
		} else {
			b, err = m.batchService.Update(ctx, editing.ID, params)
		}

		if err != nil {
			return inventorySaveMsg{err: err}
		}

		return inventorySaveMsg{status: fmt.Sprintf("Saved %s: unit cost %s", b.Name, FormatMoney(b.UnitCost))}
	}
}
