package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/contratos/internal/auth"
	"github.com/MrJamesThe3rd/contratos/internal/contract"
	"github.com/MrJamesThe3rd/contratos/internal/registry"
)

type contractsState int

const (
	contractsStateBrowse contractsState = iota
	contractsStateCreate
	contractsStateMove
	contractsStateDelete
)

type contractFields struct {
	cnpj          string
	number        string
	template      contract.Template
	stage         contract.Stage
	justification string
}

type ContractsModel struct {
	CommonModel
	contracts *contract.Service
	user      *auth.User

	state    contractsState
	table    table.Model
	items    []*contract.Contract
	form     *huh.Form
	fields   *contractFields
	target   *contract.Contract
	stageIdx int
	filter   contract.ListFilter
	loading  bool
	err      error
	status   string
}

func NewContractsModel(contracts *contract.Service, user *auth.User) ContractsModel {
	columns := []table.Column{
		{Title: "Número", Width: 16},
		{Title: "Fornecedor", Width: 30},
		{Title: "CNPJ", Width: 15},
		{Title: "Versão", Width: 6},
		{Title: "Modelo", Width: 16},
		{Title: "Etapa", Width: 16},
		{Title: "Criado em", Width: 16},
	}

	return ContractsModel{
		contracts: contracts,
		user:      user,
		table:     newTable(columns),
		loading:   true,
	}
}

func (m ContractsModel) Title() string { return "Contratos" }

func (m ContractsModel) ShortHelp() string {
	if m.state != contractsStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	help := "Esc: back | s: stage filter | r: refresh"
	if m.user.Role.CanCreateContracts() {
		help += " | n: new"
	}

	if m.user.Role.CanMoveContracts() {
		help += " | m: move"
	}

	if m.user.Role.CanDeleteContracts() {
		help += " | x: delete"
	}

	return help
}

func (m ContractsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ContractsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case contractsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.items = msg.items
		m.refreshTable()

		return m, nil

	case contractsSavedMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = errorStyle(fmt.Sprintf("Error: %v", msg.err))
		}

		m.state = contractsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == contractsStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m ContractsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			stages := contract.Stages()
			m.stageIdx = (m.stageIdx + 1) % (len(stages) + 1)
			m.filter.Stage = nil

			if m.stageIdx > 0 {
				m.filter.Stage = &stages[m.stageIdx-1]
			}

			return m, m.loadCmd()
		case "n":
			if m.user.Role.CanCreateContracts() {
				return m.openCreate()
			}
		case "m":
			if m.user.Role.CanMoveContracts() {
				return m.openMove()
			}
		case "x":
			if m.user.Role.CanDeleteContracts() {
				return m.openDelete()
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ContractsModel) selected() *contract.Contract {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.items) {
		return nil
	}

	return m.items[idx]
}

func (m ContractsModel) openCreate() (tea.Model, tea.Cmd) {
	fields := &contractFields{template: contract.TemplateNDA}

	templates := make([]huh.Option[contract.Template], 0, len(contract.Templates()))
	for _, t := range contract.Templates() {
		templates = append(templates, huh.NewOption(string(t), t))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("cnpj").
				Title("CNPJ do fornecedor").
				Value(&fields.cnpj).
				Validate(func(s string) error {
					if !registry.Valid(registry.Digits(s)) {
						return registry.ErrInvalidCNPJ
					}
					return nil
				}),
			huh.NewInput().
				Key("number").
				Title("Número do contrato").
				Value(&fields.number).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return contract.ErrNumberRequired
					}
					return nil
				}),
			huh.NewSelect[contract.Template]().
				Key("template").
				Title("Modelo").
				Options(templates...).
				Value(&fields.template),
		),
	).WithWidth(45).WithShowHelp(false)

	return m.enterForm(contractsStateCreate, fields, nil)
}

func (m ContractsModel) openMove() (tea.Model, tea.Cmd) {
	c := m.selected()
	if c == nil {
		return m, nil
	}

	fields := &contractFields{stage: c.Stage}

	stages := make([]huh.Option[contract.Stage], 0, len(contract.Stages()))
	for _, st := range contract.Stages() {
		stages = append(stages, huh.NewOption(st.Label(), st))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[contract.Stage]().
				Key("stage").
				Title("Nova etapa").
				Options(stages...).
				Value(&fields.stage),
		),
	).WithWidth(45).WithShowHelp(false)

	return m.enterForm(contractsStateMove, fields, c)
}

func (m ContractsModel) openDelete() (tea.Model, tea.Cmd) {
	c := m.selected()
	if c == nil {
		return m, nil
	}

	fields := &contractFields{}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Key("justification").
				Title("Justificativa da exclusão").
				Value(&fields.justification).
				Validate(contract.CheckJustification),
		),
	).WithWidth(45).WithShowHelp(false)

	return m.enterForm(contractsStateDelete, fields, c)
}

func (m ContractsModel) enterForm(state contractsState, fields *contractFields, target *contract.Contract) (tea.Model, tea.Cmd) {
	m.state = state
	m.fields = fields
	m.target = target
	m.status = ""
	m.table.Blur()

	return m, m.form.Init()
}

func (m ContractsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = contractsStateBrowse
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

	return m, m.saveCmd()
}

func (m ContractsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Carregando contratos...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	stageLabel := "Todas"
	if m.filter.Stage != nil {
		stageLabel = m.filter.Stage.Label()
	}

	header := fmt.Sprintf("Filtro: [s] Etapa: %s | %s contratos",
		activeStyle(stageLabel), FormatCount(len(m.items)))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	if m.state != contractsStateBrowse && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.panelTitle() + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m ContractsModel) panelTitle() string {
	switch m.state {
	case contractsStateCreate:
		return "Novo contrato"
	case contractsStateMove:
		return fmt.Sprintf("Mover %s\nEtapa atual: %s", m.target.Number, m.target.Stage.Label())
	case contractsStateDelete:
		return fmt.Sprintf("Excluir %s v%d", m.target.Number, m.target.Version)
	}

	return ""
}

func (m *ContractsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.items))
	for _, c := range m.items {
		rows = append(rows, table.Row{
			c.Number,
			c.SupplierName,
			c.SupplierCNPJ,
			fmt.Sprintf("v%d", c.Version),
			string(c.Template),
			c.Stage.Label(),
			FormatDate(c.CreatedAt.Local()),
		})
	}

	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Messages

type contractsLoadedMsg struct {
	items []*contract.Contract
	err   error
}

type contractsSavedMsg struct {
	status string
	err    error
}

func (m ContractsModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		items, err := m.contracts.List(ctx, filter)
		return contractsLoadedMsg{items: items, err: err}
	}
}

func (m ContractsModel) saveCmd() tea.Cmd {
	var (
		state  = m.state
		fields = *m.fields
		target = m.target
		actor  = m.user.Username
	)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		switch state {
		case contractsStateCreate:
			c, err := m.contracts.Create(ctx, contract.CreateParams{
				CNPJ:     fields.cnpj,
				Number:   fields.number,
				Template: fields.template,
				Actor:    actor,
			})
			if err != nil {
				return contractsSavedMsg{err: err}
			}

			return contractsSavedMsg{status: fmt.Sprintf("Contrato %s v%d criado", c.Number, c.Version)}

		case contractsStateMove:
			if err := m.contracts.Move(ctx, target.ID, fields.stage, actor); err != nil {
				return contractsSavedMsg{err: err}
			}

			return contractsSavedMsg{status: fmt.Sprintf("Contrato %s movido para %s", target.Number, fields.stage.Label())}

		case contractsStateDelete:
			if err := m.contracts.Delete(ctx, target.ID, fields.justification, actor); err != nil {
				return contractsSavedMsg{err: err}
			}

			return contractsSavedMsg{status: fmt.Sprintf("Contrato %s excluído", target.Number)}
		}

		return contractsSavedMsg{}
	}
}
