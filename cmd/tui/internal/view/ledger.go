package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/batchbook/internal/ledger"
	"github.com/MrJamesThe3rd/batchbook/internal/live"
	"github.com/MrJamesThe3rd/batchbook/internal/matching"
	"github.com/MrJamesThe3rd/batchbook/internal/statement"
)

const importTimeout = 2 * time.Minute

type ledgerState int

const (
	ledgerStateBrowse ledgerState = iota
	ledgerStatePeriod
	ledgerStateEntryForm
	ledgerStateMappingForm
	ledgerStateFilePick
	ledgerStateImporting
	ledgerStateConfirmDelete
)

type LedgerModel struct {
	CommonModel
	ledgerService   *ledger.Service
	matchingService *matching.Service
	parser          *statement.Parser

	state      ledgerState
	table      table.Model
	picker     PeriodPicker
	filePicker filepicker.Model
	form       *huh.Form

	entries     []*ledger.Entry
	summary     ledger.Summary
	filter      ledger.ListFilter
	periodLabel string

	loading bool
	err     error
	status  string

	fields *entryFields
}

type entryFields struct {
	typ         ledger.Type
	description string
	amount      string
	category    string
	pattern     string
}

func NewLedgerModel(ledgerSvc *ledger.Service, matchSvc *matching.Service, parser *statement.Parser) LedgerModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Description", Width: 36},
		{Title: "Category", Width: 16},
		{Title: "Type", Width: 7},
		{Title: "Amount", Width: 12},
	}

	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	start, end := PeriodRange(PeriodThisMonth, time.Now())

	return LedgerModel{
		ledgerService:   ledgerSvc,
		matchingService: matchSvc,
		parser:          parser,
		table:           newTable(columns),
		picker:          NewPeriodPicker(PeriodThisMonth),
		filePicker:      fp,
		filter:          ledger.ListFilter{StartDate: start, EndDate: end},
		periodLabel:     PeriodThisMonth.String(),
		loading:         true,
	}
}

func (m LedgerModel) Title() string { return "Ledger" }

func (m LedgerModel) ShortHelp() string {
	switch m.state {
	case ledgerStateEntryForm, ledgerStateMappingForm:
		return "Navigate form | Esc: cancel"
	case ledgerStateFilePick:
		return "Enter: import file | Esc: cancel"
	case ledgerStateConfirmDelete:
		return "y: delete | any other key: keep"
	}

	return "Esc: back | n: new | i: import statement | m: learn category | p: period | x: delete | r: refresh"
}

func (m LedgerModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m LedgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadLedgerMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.entries = msg.entries
		m.summary = ledger.Summarize(msg.entries)
		m.refreshTable()

		return m, nil

	case ChangedMsg:
		if msg.Kind == live.KindExpenses {
			return m, m.loadCmd()
		}

		return m, nil

	case PeriodSelectedMsg:
		m.filter.StartDate = msg.Start
		m.filter.EndDate = msg.End
		m.periodLabel = msg.Label
		m.state = ledgerStateBrowse
		m.table.Focus()

		return m, m.loadCmd()

	case ledgerSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = ledgerStateBrowse
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil
	}

	switch m.state {
	case ledgerStatePeriod:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
			m.state = ledgerStateBrowse
			m.table.Focus()

			return m, nil
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	case ledgerStateEntryForm, ledgerStateMappingForm:
		return m.updateForm(msg)
	case ledgerStateFilePick:
		return m.updateFilePick(msg)
	case ledgerStateImporting:
		return m, nil
	case ledgerStateConfirmDelete:
		return m.updateConfirm(msg)
	}

	return m.updateBrowse(msg)
}

func (m LedgerModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "n":
			return m.enterEntryForm()
		case "m":
			if e := m.selected(); e != nil {
				return m.enterMappingForm(e)
			}

			return m, nil
		case "i":
			m.state = ledgerStateFilePick
			m.table.Blur()

			return m, m.filePicker.Init()
		case "p":
			m.state = ledgerStatePeriod
			m.picker = NewPeriodPicker(PeriodThisMonth)
			m.table.Blur()

			return m, nil
		case "x":
			if m.selected() != nil {
				m.state = ledgerStateConfirmDelete
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m LedgerModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.state = ledgerStateBrowse

	e := m.selected()
	if keyMsg.String() != "y" || e == nil {
		return m, nil
	}

	return m, func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.ledgerService.Delete(ctx, e.ID); err != nil {
			return ledgerSaveMsg{err: err}
		}

		return ledgerSaveMsg{status: fmt.Sprintf("Deleted %q.", e.Description)}
	}
}

func (m LedgerModel) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = ledgerStateBrowse
		m.table.Focus()

		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = ledgerStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m LedgerModel) enterEntryForm() (tea.Model, tea.Cmd) {
	m.fields = &entryFields{typ: ledger.TypeDebit}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ledger.Type]().
				Key("type").
				Title("Type").
				Options(
					huh.NewOption("Expense", ledger.TypeDebit),
					huh.NewOption("Deposit", ledger.TypeCredit),
				).
				Value(&m.fields.typ),

			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.fields.description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("description cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(&m.fields.amount).
				Validate(func(s string) error {
					if !optionalAmount(s).IsPositive() {
						return errors.New("enter an amount above zero")
					}
					return nil
				}),

			huh.NewInput().
				Key("category").
				Title("Category").
				Description("Leave empty to use a learnt category").
				Value(&m.fields.category),
		),
	).WithWidth(48).WithShowHelp(false)

	m.state = ledgerStateEntryForm
	m.table.Blur()

	return m, m.form.Init()
}

func (m LedgerModel) enterMappingForm(e *ledger.Entry) (tea.Model, tea.Cmd) {
	m.fields = &entryFields{pattern: e.Description, category: e.Category}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("pattern").
				Title("Descriptions containing").
				Value(&m.fields.pattern).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("pattern cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("category").
				Title("Belong to category").
				Value(&m.fields.category).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("category cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(48).WithShowHelp(false)

	m.state = ledgerStateMappingForm
	m.table.Blur()

	return m, m.form.Init()
}

func (m LedgerModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = ledgerStateBrowse
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

	save := m.saveEntryCmd()
	if m.state == ledgerStateMappingForm {
		save = m.learnCmd()
	}

	m.state = ledgerStateBrowse
	m.form = nil
	m.table.Focus()

	return m, save
}

func (m LedgerModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading ledger...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	switch m.state {
	case ledgerStatePeriod:
		return lipgloss.NewStyle().Padding(2).Render(m.picker.View())
	case ledgerStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a bank statement to import:\n\n" + m.filePicker.View(),
		)
	case ledgerStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	}

	balance := FormatMoney(m.summary.Balance)
	if m.summary.Balance.IsNegative() {
		balance = errorStyle(balance)
	} else {
		balance = okStyle(balance)
	}

	header := fmt.Sprintf(
		"[p] Period: %s | Deposits %s | Expenses %s | Balance %s",
		activeStyle(m.periodLabel),
		FormatMoney(m.summary.TotalCredits),
		FormatMoney(m.summary.TotalDebits),
		balance,
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	switch m.state {
	case ledgerStateEntryForm:
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, sidePanel("New Entry", m.form.View()))
	case ledgerStateMappingForm:
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, sidePanel("Learn Category", m.form.View()))
	case ledgerStateConfirmDelete:
		if e := m.selected(); e != nil {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content,
				sidePanel("Delete Entry", fmt.Sprintf("Delete %q?\n\n(y to confirm)", e.Description)))
		}
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m LedgerModel) selected() *ledger.Entry {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.entries) {
		return nil
	}

	return m.entries[idx]
}

func (m *LedgerModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.entries))
	for _, e := range m.entries {
		amount := FormatMoney(e.Amount)
		if e.Type == ledger.TypeDebit {
			amount = "-" + amount
		}

		rows = append(rows, table.Row{
			FormatDate(e.Date),
			e.Description,
			e.Category,
			string(e.Type),
			amount,
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadLedgerMsg struct {
	entries []*ledger.Entry
	err     error
}

func (m LedgerModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entries, err := m.ledgerService.List(ctx, filter)

		return loadLedgerMsg{entries: entries, err: err}
	}
}

type ledgerSaveMsg struct {
	status string
	err    error
}

func (m LedgerModel) saveEntryCmd() tea.Cmd {
	f := *m.fields

	params := ledger.CreateParams{
		Date:        time.Now(),
		Description: strings.TrimSpace(f.description),
		Amount:      optionalAmount(f.amount),
		Category:    strings.TrimSpace(f.category),
		Type:        f.typ,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if params.Category == "" {
			category, err := m.matchingService.Suggest(ctx, params.Description)
			if err == nil {
				params.Category = category
			}
		}

		e, err := m.ledgerService.Create(ctx, params)
		if err != nil {
			return ledgerSaveMsg{err: err}
		}

		return ledgerSaveMsg{status: fmt.Sprintf("Saved %s under %s.", FormatMoney(e.Amount), e.Category)}
	}
}

func (m LedgerModel) learnCmd() tea.Cmd {
	f := *m.fields

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.matchingService.Learn(ctx, f.pattern, f.category); err != nil {
			return ledgerSaveMsg{err: err}
		}

		return ledgerSaveMsg{status: fmt.Sprintf("Descriptions containing %q now go to %s.", strings.TrimSpace(f.pattern), strings.TrimSpace(f.category))}
	}
}

func (m LedgerModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return ledgerSaveMsg{err: err}
		}
		defer f.Close()

		params, err := m.parser.Parse(f)
		if err != nil {
			return ledgerSaveMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.ledgerService.ImportStatement(ctx, params)
		if err != nil {
			return ledgerSaveMsg{err: err}
		}

		return ledgerSaveMsg{status: fmt.Sprintf("Imported %d entries, skipped %d already in the ledger.", len(result.Imported), len(result.Skipped))}
	}
}
