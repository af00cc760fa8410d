package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/contratos/internal/contract"
	"github.com/MrJamesThe3rd/contratos/internal/sla"
)

type SummaryModel struct {
	CommonModel
	contracts  *contract.Service
	aggregator *sla.Aggregator

	counts  map[contract.Stage]int
	report  *sla.Report
	loading bool
	err     error
}

func NewSummaryModel(contracts *contract.Service, aggregator *sla.Aggregator) SummaryModel {
	return SummaryModel{contracts: contracts, aggregator: aggregator, loading: true}
}

func (m SummaryModel) Title() string     { return "Resumo" }
func (m SummaryModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m SummaryModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryLoadedMsg:
		m.loading = false
		m.counts, m.report, m.err = msg.counts, msg.report, msg.err

		return m, nil

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

var cardStyle = lipgloss.NewStyle().
	Padding(0, 2).
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("63")).
	Width(22)

func (m SummaryModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Carregando resumo...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	cards := make([]string, 0, len(contract.Stages()))

	for _, st := range contract.Stages() {
		body := fmt.Sprintf("%s\n\n%s contratos", activeStyle(st.Label()), FormatCount(m.counts[st]))

		if m.report != nil && !st.Terminal() {
			body += fmt.Sprintf("\n%s dias úteis", FormatDays(m.report.StageBusinessDays[st]))
		}

		cards = append(cards, cardStyle.Render(body))
	}

	var b strings.Builder

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n\n")

	if m.report == nil {
		b.WriteString("SLA: nenhum contrato finalizado ainda")
	} else {
		fmt.Fprintf(&b, "SLA médio até finalizar: %s dias úteis (%s contratos)",
			activeStyle(FormatDays(m.report.TotalBusinessDays)), FormatCount(m.report.Population))

		if n := len(m.report.Skipped); n > 0 {
			b.WriteString("\n" + lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("%d contratos ignorados por datas inválidas", n)))
		}
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

type summaryLoadedMsg struct {
	counts map[contract.Stage]int
	report *sla.Report
	err    error
}

func (m SummaryModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		counts, err := m.contracts.CountByStage(ctx)
		if err != nil {
			return summaryLoadedMsg{err: err}
		}

		report, err := m.aggregator.AverageFinalized(ctx)
		if err != nil && !errors.Is(err, sla.ErrNoData) {
			return summaryLoadedMsg{err: err}
		}

		return summaryLoadedMsg{counts: counts, report: report}
	}
}
