package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/contratos/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/contratos/internal/auth"
	authStore "github.com/MrJamesThe3rd/contratos/internal/auth/store"
	"github.com/MrJamesThe3rd/contratos/internal/businesshours"
	"github.com/MrJamesThe3rd/contratos/internal/config"
	"github.com/MrJamesThe3rd/contratos/internal/contract"
	contractStore "github.com/MrJamesThe3rd/contratos/internal/contract/store"
	"github.com/MrJamesThe3rd/contratos/internal/database"
	"github.com/MrJamesThe3rd/contratos/internal/document"
	"github.com/MrJamesThe3rd/contratos/internal/registry"
	"github.com/MrJamesThe3rd/contratos/internal/sla"
	slaStore "github.com/MrJamesThe3rd/contratos/internal/sla/store"
)

type model struct {
	authService     *auth.Service
	contractService *contract.Service
	aggregator      *sla.Aggregator

	user        *auth.User
	currentView View

	loginView     view.LoginModel
	summaryView   view.SummaryModel
	contractsView view.ContractsModel
	suppliersView view.SuppliersModel
}

type View int

const (
	ViewLogin     View = 0
	ViewMenu      View = 1
	ViewSummary   View = 2
	ViewContracts View = 3
	ViewSuppliers View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	hoursCfg, err := cfg.BusinessHours()
	if err != nil {
		slog.Error("invalid business hours", "error", err)
		os.Exit(1)
	}

	clock, err := businesshours.New(hoursCfg)
	if err != nil {
		slog.Error("invalid business hours", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	authSvc := auth.NewService(authStore.New(db))
	contractSvc := contract.NewService(
		contractStore.New(db),
		registry.NewClient(cfg.Registry.URL, cfg.Registry.Timeout),
		document.NewGenerator(cfg.Documents.TemplatesDir, cfg.Documents.ContractsDir),
	)

	return model{
		authService:     authSvc,
		contractService: contractSvc,
		aggregator:      sla.NewAggregator(slaStore.New(db), clock),
		currentView:     ViewLogin,
		loginView:       view.NewLoginModel(authSvc),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
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
				m.currentView = ViewSummary
				m.summaryView = view.NewSummaryModel(m.contractService, m.aggregator)

				return m, m.summaryView.Init()
			case "2":
				m.currentView = ViewContracts
				m.contractsView = view.NewContractsModel(m.contractService, m.user)

				return m, m.contractsView.Init()
			case "3":
				m.currentView = ViewSuppliers
				m.suppliersView = view.NewSuppliersModel(m.contractService)

				return m, m.suppliersView.Init()
			}
		}
	case view.LoggedInMsg:
		m.user = msg.User
		m.currentView = ViewMenu

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewSummary:
		var newModel tea.Model
		newModel, cmd = m.summaryView.Update(msg)
		m.summaryView = newModel.(view.SummaryModel)
	case ViewContracts:
		var newModel tea.Model
		newModel, cmd = m.contractsView.Update(msg)
		m.contractsView = newModel.(view.ContractsModel)
	case ViewSuppliers:
		var newModel tea.Model
		newModel, cmd = m.suppliersView.Update(msg)
		m.suppliersView = newModel.(view.SuppliersModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("Contratos (%s, %s)\n\n", m.user.Username, m.user.Role) +
				"1. Resumo e SLA\n" +
				"2. Contratos\n" +
				"3. Fornecedores\n\n" +
				"q. Sair",
		)
	case ViewSummary:
		return m.summaryView.View()
	case ViewContracts:
		return m.contractsView.View()
	case ViewSuppliers:
		return m.suppliersView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
