package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/contratos/internal/auth"
)

// LoggedInMsg carries the authenticated user back to the main model.
type LoggedInMsg struct {
	User *auth.User
}

type loginFields struct {
	username string
	password string
}

type LoginModel struct {
	CommonModel
	authService *auth.Service

	form   *huh.Form
	fields *loginFields
	err    error
}

func NewLoginModel(authSvc *auth.Service) LoginModel {
	fields := &loginFields{}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("username").
				Title("Usuário").
				Value(&fields.username),
			huh.NewInput().
				Key("password").
				Title("Senha").
				EchoMode(huh.EchoModePassword).
				Value(&fields.password),
		),
	).WithWidth(40).WithShowHelp(false)

	return LoginModel{authService: authSvc, form: form, fields: fields}
}

func (m LoginModel) Title() string     { return "Login" }
func (m LoginModel) ShortHelp() string { return "Enter: confirm | Ctrl+C: quit" }

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(loginResultMsg); ok {
		if msg.err != nil {
			// Start over with a fresh form; huh forms cannot be reopened once completed.
			next := NewLoginModel(m.authService)
			next.err = msg.err

			return next, next.Init()
		}

		return m, func() tea.Msg { return LoggedInMsg{User: msg.user} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.authenticateCmd()
}

func (m LoginModel) View() string {
	content := "Contratos\n\n" + m.form.View()

	if m.err != nil {
		content += "\n" + errorStyle(fmt.Sprintf("Falha no login: %v", m.err))
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}

type loginResultMsg struct {
	user *auth.User
	err  error
}

func (m LoginModel) authenticateCmd() tea.Cmd {
	username, password := m.fields.username, m.fields.password

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		u, err := m.authService.Authenticate(ctx, username, password)
		return loginResultMsg{user: u, err: err}
	}
}
