package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/contratos/internal/contract"
)

type SuppliersModel struct {
	CommonModel
	contracts *contract.Service

	table     table.Model
	versions  table.Model
	suppliers []contract.SupplierSummary
	selected  *contract.SupplierSummary
	loading   bool
	err       error
}

func NewSuppliersModel(contracts *contract.Service) SuppliersModel {
	suppliers := newTable([]table.Column{
		{Title: "CNPJ", Width: 15},
		{Title: "Fornecedor", Width: 40},
		{Title: "Contratos", Width: 10},
		{Title: "Última versão", Width: 14},
	})

	versions := newTable([]table.Column{
		{Title: "Versão", Width: 6},
		{Title: "Número", Width: 16},
		{Title: "Modelo", Width: 16},
		{Title: "Etapa", Width: 16},
		{Title: "Criado em", Width: 16},
		{Title: "Documento", Width: 40},
	})

	return SuppliersModel{
		contracts: contracts,
		table:     suppliers,
		versions:  versions,
		loading:   true,
	}
}

func (m SuppliersModel) Title() string { return "Fornecedores" }

func (m SuppliersModel) ShortHelp() string {
	if m.selected != nil {
		return "Esc: back to suppliers"
	}

	return "Esc: back | Enter: versions | r: refresh"
}

func (m SuppliersModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SuppliersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case suppliersLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.suppliers = msg.suppliers
		m.refreshTable()

		return m, nil

	case versionsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.refreshVersions(msg.items)

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		m.versions.SetHeight(msg.Height - 10)

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			if m.selected != nil {
				m.selected = nil
				m.err = nil
				m.table.Focus()

				return m, nil
			}

			return m, Back
		case "r":
			if m.selected == nil {
				m.loading = true
				return m, m.loadCmd()
			}
		case "enter":
			if m.selected == nil {
				return m.openVersions()
			}
		}
	}

	var cmd tea.Cmd
	if m.selected != nil {
		m.versions, cmd = m.versions.Update(msg)
	} else {
		m.table, cmd = m.table.Update(msg)
	}

	return m, cmd
}

func (m SuppliersModel) openVersions() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.suppliers) {
		return m, nil
	}

	s := m.suppliers[idx]
	m.selected = &s
	m.loading = true
	m.table.Blur()
	m.versions.Focus()

	return m, m.loadVersionsCmd(s.CNPJ)
}

func (m SuppliersModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Carregando fornecedores...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	var header, body string

	if m.selected != nil {
		header = fmt.Sprintf("%s (%s)", activeStyle(m.selected.Name), m.selected.CNPJ)
		body = m.versions.View()
	} else {
		header = fmt.Sprintf("%s fornecedores", FormatCount(len(m.suppliers)))
		body = m.table.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(body),
	)

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *SuppliersModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.suppliers))
	for _, s := range m.suppliers {
		rows = append(rows, table.Row{
			s.CNPJ,
			s.Name,
			FormatCount(s.Total),
			fmt.Sprintf("v%d", s.MaxVersion),
		})
	}

	m.table.SetRows(rows)
}

func (m *SuppliersModel) refreshVersions(items []*contract.Contract) {
	rows := make([]table.Row, 0, len(items))
	for _, c := range items {
		rows = append(rows, table.Row{
			fmt.Sprintf("v%d", c.Version),
			c.Number,
			string(c.Template),
			c.Stage.Label(),
			FormatDate(c.CreatedAt.Local()),
			c.FilePath,
		})
	}

	m.versions.SetRows(rows)
	m.versions.SetCursor(0)
}

// Messages

type suppliersLoadedMsg struct {
	suppliers []contract.SupplierSummary
	err       error
}

type versionsLoadedMsg struct {
	items []*contract.Contract
	err   error
}

func (m SuppliersModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		suppliers, err := m.contracts.Suppliers(ctx)
		return suppliersLoadedMsg{suppliers: suppliers, err: err}
	}
}

func (m SuppliersModel) loadVersionsCmd(cnpj string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		items, err := m.contracts.SupplierVersions(ctx, cnpj)
		return versionsLoadedMsg{items: items, err: err}
	}
}
