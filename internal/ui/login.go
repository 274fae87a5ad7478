package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/backoffice/internal/api"
	"github.com/five82/backoffice/internal/prefs"
	"github.com/five82/backoffice/internal/session"
)

func newLoginState(lastUsername string) loginState {
	user := textinput.New()
	user.Prompt = ""
	user.Placeholder = "username"
	user.CharLimit = 64
	user.SetValue(lastUsername)

	pass := textinput.New()
	pass.Prompt = ""
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 128

	st := loginState{inputs: [2]textinput.Model{user, pass}}
	// A remembered username puts the cursor on the password.
	if strings.TrimSpace(lastUsername) != "" {
		st.focus = 1
	}
	st.inputs[st.focus].Focus()
	return st
}

func (m *Model) focusLogin(i int) tea.Cmd {
	m.login.focus = (i + len(m.login.inputs)) % len(m.login.inputs)
	for j := range m.login.inputs {
		m.login.inputs[j].Blur()
	}
	return m.login.inputs[m.login.focus].Focus()
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		if m.login.focus == 0 {
			return m, m.focusLogin(1)
		}
		if m.login.busy || m.sess == nil {
			return m, nil
		}
		m.login.busy = true
		m.login.err = ""
		username := m.login.inputs[0].Value()
		password := m.login.inputs[1].Value()
		return m, loginCmd(m.ctx, m.sess, username, password)

	case key.Matches(msg, m.keys.NextField):
		return m, m.focusLogin(m.login.focus + 1)

	case key.Matches(msg, m.keys.PrevField):
		return m, m.focusLogin(m.login.focus - 1)
	}

	var cmd tea.Cmd
	m.login.inputs[m.login.focus], cmd = m.login.inputs[m.login.focus].Update(msg)
	return m, cmd
}

func (m Model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false
	if msg.err != nil {
		m.login.err = loginErrorText(msg.err)
		m.login.inputs[1].SetValue("")
		return m, m.focusLogin(1)
	}
	if m.prefsPath != "" {
		username := strings.TrimSpace(msg.username)
		if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.LastUsername = username }); err != nil {
			m.log.Warn().Err(err).Str("path", m.prefsPath).Msg("save last username")
		}
	}
	return m, m.syncSession()
}

func loginErrorText(err error) string {
	switch {
	case errors.Is(err, session.ErrMissingUsername):
		return "Enter a username."
	case errors.Is(err, session.ErrMissingPassword):
		return "Enter a password."
	case api.IsAuthRequired(err):
		return "Wrong username or password."
	default:
		return "Could not reach the server: " + err.Error()
	}
}

func (m Model) renderLogin(height int) string {
	styles := m.theme.Styles()
	labelStyle := styles.MutedText.Width(10)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Sign in"))
	b.WriteString("\n\n")
	labels := [2]string{"Username", "Password"}
	for i, in := range m.login.inputs {
		label := labelStyle.Render(labels[i])
		if i == m.login.focus {
			label = styles.AccentText.Width(10).Render(labels[i])
		}
		b.WriteString(label)
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	switch {
	case m.login.busy:
		b.WriteString(m.spinner.View() + " Signing in...")
	case m.login.err != "":
		b.WriteString(styles.DangerText.Render(m.login.err))
	default:
		b.WriteString(styles.FaintText.Render("enter to sign in · ctrl+c to quit"))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(1, 2).
		Width(LayoutLoginWidth).
		Render(b.String())

	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, box)
}
