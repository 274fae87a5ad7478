package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/backoffice/internal/logtail"
)

func (m *Model) handleActivity(msg activityMsg) {
	if msg.err != nil {
		m.activity.err = msg.err.Error()
		return
	}
	m.activity.err = ""
	entries := logtail.ParseLines(msg.lines)
	m.activity.entries = len(entries)

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, m.formatEntry(e))
	}
	m.activity.viewport.SetContent(strings.Join(lines, "\n"))
	if m.activity.follow {
		m.activity.viewport.GotoBottom()
	}
}

func (m Model) formatEntry(e logtail.Entry) string {
	line := logtail.Format(e)
	color, ok := m.theme.StatusColors[e.Level]
	if !ok {
		return m.theme.Styles().Text.Render(line)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(line)
}

// handleActivityKey scrolls the log view. Scrolling up stops following.
func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Follow):
		m.activity.follow = !m.activity.follow
		if m.activity.follow {
			m.activity.viewport.GotoBottom()
		}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, activityCmd(m.logPath)
	}

	var cmd tea.Cmd
	m.activity.viewport, cmd = m.activity.viewport.Update(msg)
	if !m.activity.viewport.AtBottom() {
		m.activity.follow = false
	}
	return m, cmd
}

func (m Model) renderActivity(height int) string {
	styles := m.theme.Styles()
	title := "Activity"
	if m.activity.follow {
		title += " · following"
	}

	var body string
	switch {
	case m.activity.err != "":
		body = styles.DangerText.Render(m.activity.err)
	case m.activity.entries == 0:
		body = styles.MutedText.Render("No activity logged yet")
	default:
		body = m.activity.viewport.View()
	}
	return m.renderTitledBox(title, body, m.width, height, true)
}
