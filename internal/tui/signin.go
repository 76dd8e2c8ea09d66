package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"homeboard/internal/sync"
)

// signinModel gates the app until a credential exists. It offers sign-in
// and registration through one form.
type signinModel struct {
	syncer *sync.Syncer

	form       *huh.Form
	mode       *string
	email      *string
	name       *string
	password   *string
	submitting bool
}

func newSigninModel(s *sync.Syncer) signinModel {
	mode, email, name, password := "signin", "", "", ""
	m := signinModel{
		syncer:   s,
		mode:     &mode,
		email:    &email,
		name:     &name,
		password: &password,
	}
	m.form = m.buildForm()
	return m
}

func (m signinModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Welcome to homeboard").
				Options(
					huh.NewOption("Sign in", "signin"),
					huh.NewOption("Create an account", "register"),
				).
				Value(m.mode),
			huh.NewInput().Title("Email").Value(m.email),
			huh.NewInput().Title("Name (new accounts)").Value(m.name),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(m.password),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m signinModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m signinModel) update(msg tea.Msg) (signinModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		email := strings.TrimSpace(*m.email)
		name := strings.TrimSpace(*m.name)
		password := *m.password
		mode := *m.mode
		s := m.syncer

		m.submitting = true
		return m, func() tea.Msg {
			var err error
			var userMsg signedInMsg
			if mode == "register" {
				userMsg.user, err = s.Register(context.Background(), email, name, password)
			} else {
				userMsg.user, err = s.SignIn(context.Background(), email, password)
			}
			if err != nil {
				return errMsg{err}
			}
			return userMsg
		}
	}

	return m, cmd
}

func (m signinModel) view(width, height int) string {
	content := m.form.View()
	if m.submitting {
		content = pendingStyle.Render("Signing in...")
	}
	panel := panelStyle.Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}
