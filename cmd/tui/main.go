package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/batchbook/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/batchbook/internal/app"
	"github.com/MrJamesThe3rd/batchbook/internal/config"
	"github.com/MrJamesThe3rd/batchbook/internal/live"
	"github.com/MrJamesThe3rd/batchbook/internal/migration"
)

type model struct {
	appName  string
	backend  string
	services *app.Services
	migrator *migration.Migrator
	changes  <-chan live.Kind

	currentView View

	inventoryView view.InventoryModel
	salesView     view.SalesModel
	ledgerView    view.LedgerModel
	dashboardView view.DashboardModel
	migrateView   view.MigrateModel
}

type View int

const (
	ViewMenu      View = 0
	ViewInventory View = 1
	ViewSales     View = 2
	ViewLedger    View = 3
	ViewDashboard View = 4
	ViewMigrate   View = 5
)

func newModel(cfg *config.Config, svc *app.Services, migrator *migration.Migrator, changes <-chan live.Kind) model {
	return model{
		appName:     cfg.App.Name,
		backend:     cfg.Store.Backend,
		services:    svc,
		migrator:    migrator,
		changes:     changes,
		currentView: ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

// waitForChange turns the next store notification into a message.
func waitForChange(changes <-chan live.Kind) tea.Cmd {
	return func() tea.Msg {
		kind, ok := <-changes
		if !ok {
			return nil
		}

		return view.ChangedMsg{Kind: kind}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewInventory
				m.inventoryView = view.NewInventoryModel(m.services.Batches, m.services.Sales)

				return m, m.inventoryView.Init()
			case "2":
				m.currentView = ViewSales
				m.salesView = view.NewSalesModel(m.services.Sales, m.services.Batches)

				return m, m.salesView.Init()
			case "3":
				m.currentView = ViewLedger
				m.ledgerView = view.NewLedgerModel(m.services.Ledger, m.services.Matching, m.services.Parser)

				return m, m.ledgerView.Init()
			case "4":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.services.Reports)

				return m, m.dashboardView.Init()
			case "5":
				m.currentView = ViewMigrate
				m.migrateView = view.NewMigrateModel(m.migrator)

				return m, m.migrateView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	case view.ChangedMsg:
		// Keep listening whichever view is active.
		m, cmd = m.updateActive(msg)
		return m, tea.Batch(cmd, waitForChange(m.changes))
	}

	m, cmd = m.updateActive(msg)

	return m, cmd
}

func (m model) updateActive(msg tea.Msg) (model, tea.Cmd) {
	var (
		newModel tea.Model
		cmd      tea.Cmd
	)

	switch m.currentView {
	case ViewInventory:
		newModel, cmd = m.inventoryView.Update(msg)
		m.inventoryView = newModel.(view.InventoryModel)
	case ViewSales:
		newModel, cmd = m.salesView.Update(msg)
		m.salesView = newModel.(view.SalesModel)
	case ViewLedger:
		newModel, cmd = m.ledgerView.Update(msg)
		m.ledgerView = newModel.(view.LedgerModel)
	case ViewDashboard:
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewMigrate:
		newModel, cmd = m.migrateView.Update(msg)
		m.migrateView = newModel.(view.MigrateModel)
	}

	return m, cmd
}

func (m model) View() string {
	var (
		active view.View
		body   string
	)

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("%s (%s store)\n\n", m.appName, m.backend) +
				"1. Inventory\n" +
				"2. Sales\n" +
				"3. Ledger\n" +
				"4. Dashboard\n" +
				"5. Migrate Local Data\n\n" +
				"q. Quit",
		)
	case ViewInventory:
		active = m.inventoryView
	case ViewSales:
		active = m.salesView
	case ViewLedger:
		active = m.ledgerView
	case ViewDashboard:
		active = m.dashboardView
	case ViewMigrate:
		active = m.migrateView
	default:
		return "Unknown View"
	}

	body = active.View()

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(active.Title()),
		body,
		lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(active.ShortHelp()),
	)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI; logs go to a file when asked for.
	if path := os.Getenv("TUI_LOG_FILE"); path != "" {
		f, err := tea.LogToFile(path, "batchbook")
		if err != nil {
			slog.Error("failed to open log file", "error", err)
			os.Exit(1)
		}
		defer f.Close()

		slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.LogLevel()})))
	} else {
		slog.SetDefault(slog.New(slog.DiscardHandler))
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "failed to run TUI:", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := app.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}
	defer backend.Close()

	var (
		hub      = live.NewHub()
		notifier live.Notifier = hub
		locker   migration.Locker
	)

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("parsing redis url: %w", err)
		}

		rdb := redis.NewClient(opts)
		defer rdb.Close()

		bridge := live.NewRedisBridge(rdb, hub)
		notifier = bridge
		locker = migration.NewRedisLocker(rdb)

		go func() { _ = bridge.Run(ctx) }()
	}

	var migrator *migration.Migrator

	if backend.SQL != nil {
		m, local, err := app.NewMigrator(cfg.Store.LocalPath, backend.SQL, locker, notifier)
		if err != nil {
			slog.Warn("local store unavailable, migration disabled", "path", cfg.Store.LocalPath, "error", err)
		} else if local != nil {
			defer local.Close()
			migrator = m
		}
	}

	svc := app.NewServices(backend.Stores, notifier)

	p := tea.NewProgram(newModel(cfg, svc, migrator, subscribeAll(ctx, hub)), tea.WithAltScreen())
	_, err = p.Run()

	return err
}

// subscribeAll merges change signals for every collection into one channel.
func subscribeAll(ctx context.Context, hub *live.Hub) <-chan live.Kind {
	out := make(chan live.Kind, len(live.Kinds))

	for _, kind := range live.Kinds {
		ch, unsubscribe := hub.Subscribe(kind)

		go func() {
			defer unsubscribe()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ch:
					select {
					case out <- kind:
					default:
					}
				}
			}
		}()
	}

	return out
}
