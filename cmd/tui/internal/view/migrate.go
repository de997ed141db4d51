package view

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/batchbook/internal/migration"
)

const migrateTimeout = 10 * time.Minute

type migrateState int

const (
	migrateStateIdle migrateState = iota
	migrateStateRunning
	migrateStateDone
)

type MigrateModel struct {
	CommonModel
	migrator *migration.Migrator

	state  migrateState
	report *migration.Report
	err    error
}

// NewMigrateModel accepts a nil migrator, in which case the view only
// explains why migration is unavailable.
func NewMigrateModel(migrator *migration.Migrator) MigrateModel {
	return MigrateModel{migrator: migrator}
}

func (m MigrateModel) Title() string { return "Migrate Local Data" }

func (m MigrateModel) ShortHelp() string {
	if m.state == migrateStateRunning {
		return "Running..."
	}

	return "Esc: back | d: dry run | m: migrate"
}

func (m MigrateModel) Init() tea.Cmd {
	return nil
}

func (m MigrateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case migrateResultMsg:
		m.state = migrateStateDone
		m.report = msg.report
		m.err = msg.err

		return m, nil

	case tea.KeyMsg:
		if m.state == migrateStateRunning {
			return m, nil
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "d":
			return m.start(true)
		case "m":
			return m.start(false)
		}
	}

	return m, nil
}

func (m MigrateModel) start(dryRun bool) (tea.Model, tea.Cmd) {
	if m.migrator == nil {
		return m, nil
	}

	m.state = migrateStateRunning
	m.report = nil
	m.err = nil

	migrator := m.migrator.WithOptions(migration.Options{DryRun: dryRun})

	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
		defer cancel()

		report, err := migrator.Run(ctx)

		return migrateResultMsg{report: report, err: err}
	}
}

func (m MigrateModel) View() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.migrator == nil {
		return style.Render("Migration copies the local store into the cloud database.\n\n" +
			"It needs STORE_BACKEND=cloud and an existing store at LOCAL_DB_PATH.\n\n(Esc to go back)")
	}

	switch m.state {
	case migrateStateRunning:
		return style.Render("Copying local data...")
	case migrateStateDone:
		out := ""
		if m.report != nil {
			out = FormatReport(m.report) + "\n\n"
		}

		if m.err != nil {
			return style.Render(out + errorStyle(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
		}

		return style.Render(out + okStyle("Done.") + "\n\n(Esc to go back)")
	}

	return style.Render("Copy everything in the local store to the cloud database.\n" +
		"Records copied by an earlier run are skipped.\n\n" +
		"d. Dry run (writes nothing)\n" +
		"m. Migrate\n\n" +
		"Esc. Back")
}

func FormatReport(r *migration.Report) string {
	title := "Migration report"
	if r.DryRun {
		title = "Dry run report"
	}

	return fmt.Sprintf(
		"%s\n\nBatches   %d\nSales     %d\nExpenses  %d\nSkipped   %d\n\nSales without a batch  %d\nImages dropped         %d",
		title, r.Batches, r.Sales, r.Expenses, r.Skipped, r.OrphanSales, r.ImagesDropped,
	)
}

type migrateResultMsg struct {
	report *migration.Report
	err    error
}
