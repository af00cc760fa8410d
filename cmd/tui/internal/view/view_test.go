package view

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/contratos/internal/auth"
	"github.com/MrJamesThe3rd/contratos/internal/contract"
	"github.com/MrJamesThe3rd/contratos/internal/sla"
)

func TestContractsModel_ShortHelp(t *testing.T) {
	type testCase struct {
		name     string
		role     auth.Role
		contains []string
		excludes []string
	}

	tests := []testCase{
		{name: "Admin", role: auth.RoleAdmin, contains: []string{"n: new", "m: move", "x: delete"}},
		{name: "Requester", role: auth.RoleRequester, contains: []string{"n: new"}, excludes: []string{"m: move", "x: delete"}},
		{name: "Viewer", role: auth.RoleViewer, excludes: []string{"n: new", "m: move", "x: delete"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewContractsModel(nil, &auth.User{Username: "u", Role: tt.role})
			help := m.ShortHelp()

			for _, s := range tt.contains {
				assert.Contains(t, help, s)
			}

			for _, s := range tt.excludes {
				assert.NotContains(t, help, s)
			}
		})
	}
}

func TestContractsModel_ViewerCannotOpenForms(t *testing.T) {
	m := NewContractsModel(nil, &auth.User{Username: "u", Role: auth.RoleViewer})
	updated, _ := m.Update(contractsLoadedMsg{items: []*contract.Contract{{Number: "CT-1", Stage: contract.StageIntake}}})

	for _, key := range []string{"n", "m", "x"} {
		next, _ := updated.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
		assert.Equal(t, contractsStateBrowse, next.(ContractsModel).state)
	}
}

func TestContractsModel_StageFilterCycles(t *testing.T) {
	var m tea.Model = NewContractsModel(nil, &auth.User{Role: auth.RoleViewer})

	for _, want := range contract.Stages() {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
		got := m.(ContractsModel).filter.Stage
		if assert.NotNil(t, got) {
			assert.Equal(t, want, *got)
		}
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.Nil(t, m.(ContractsModel).filter.Stage)
}

func TestSummaryModel_View(t *testing.T) {
	counts := map[contract.Stage]int{contract.StageIntake: 3, contract.StageFinalized: 1}

	t.Run("WithReport", func(t *testing.T) {
		m := NewSummaryModel(nil, nil)
		updated, _ := m.Update(summaryLoadedMsg{
			counts: counts,
			report: &sla.Report{
				Population:        1,
				TotalBusinessDays: 0.83,
				StageBusinessDays: map[contract.Stage]float64{contract.StageIntake: 0.33},
				Skipped:           []sla.Skip{{ContractID: "x", Reason: "created_at"}},
			},
		})

		out := updated.View()
		assert.Contains(t, out, "0,83")
		assert.Contains(t, out, "0,33")
		assert.Contains(t, out, "1 contratos ignorados")
	})

	t.Run("NoFinalizedContracts", func(t *testing.T) {
		m := NewSummaryModel(nil, nil)
		updated, _ := m.Update(summaryLoadedMsg{counts: counts})

		assert.Contains(t, updated.View(), "nenhum contrato finalizado")
	})
}
