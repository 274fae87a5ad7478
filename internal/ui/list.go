package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/backoffice/internal/admin"
)

func (m Model) newTable() table.Model {
	return table.New(
		table.WithFocused(true),
		table.WithStyles(m.tableStyles()),
	)
}

func (m Model) tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		BorderBottom(true).
		Foreground(lipgloss.Color(m.theme.Accent)).
		Bold(true)
	s.Cell = s.Cell.Foreground(lipgloss.Color(m.theme.Text))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(m.theme.SelectionText)).
		Background(lipgloss.Color(m.theme.SelectionBg)).
		Bold(false)
	return s
}

// switchScreen shows screen i, painting the cached rows first and loading
// in the background when they are missing or stale.
func (m *Model) switchScreen(i int) tea.Cmd {
	if i < 0 || i >= len(m.screens) {
		return nil
	}
	changed := i != m.list.screen
	m.list.screen = i
	m.list.err = ""
	screen := m.screens[i]

	if changed {
		m.list.table.SetRows(nil)
		m.list.table.SetColumns(tableColumns(screen.Columns()))
		m.list.table.SetCursor(0)
		m.list.rows = nil
		m.list.loaded = false
	}
	if rows, stale, ok := screen.CachedRows(); ok {
		m.setRows(rows, stale)
		m.list.loaded = true
	}
	m.watch()
	return loadRowsCmd(m.ctx, i, screen, false)
}

func (m *Model) loadRows(force bool) tea.Cmd {
	screen := m.currentScreen()
	if screen == nil {
		return nil
	}
	if len(m.list.table.Columns()) == 0 {
		m.list.table.SetColumns(tableColumns(screen.Columns()))
	}
	return loadRowsCmd(m.ctx, m.list.screen, screen, force)
}

func tableColumns(specs []admin.ColumnSpec) []table.Column {
	cols := make([]table.Column, len(specs))
	for i, c := range specs {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	return cols
}

func (m *Model) handleRows(msg rowsMsg) tea.Cmd {
	if msg.screen != m.list.screen {
		// A late answer for a screen no longer in view is already cached.
		return nil
	}
	if msg.err != nil {
		m.list.err = errorText(msg.err)
		m.setFlash(m.list.err, errorStatus(msg.err))
		return m.expireOnAuthError(msg.err)
	}
	m.list.loaded = true
	m.list.err = ""
	m.setRows(msg.rows, false)
	return nil
}

// setRows replaces the table rows, keeping the selection on the same id
// when it is still present.
func (m *Model) setRows(rows []admin.Row, stale bool) {
	var selectedID int64
	if row, ok := m.selectedRow(); ok {
		selectedID = row.ID
	}

	m.list.rows = rows
	m.list.stale = stale
	tableRows := make([]table.Row, len(rows))
	for i, r := range rows {
		tableRows[i] = table.Row(r.Cells)
	}
	m.list.table.SetRows(tableRows)

	cursor := m.list.table.Cursor()
	if selectedID > 0 {
		for i, r := range rows {
			if r.ID == selectedID {
				cursor = i
				break
			}
		}
	}
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	m.list.table.SetCursor(max(cursor, 0))
}

func (m Model) selectedRow() (admin.Row, bool) {
	i := m.list.table.Cursor()
	if i < 0 || i >= len(m.list.rows) {
		return admin.Row{}, false
	}
	return m.list.rows[i], true
}

// handleListKey processes keyboard input for the list view.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	screen := m.currentScreen()
	if screen == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.NextScreen):
		return m, m.switchScreen((m.list.screen + 1) % len(m.screens))

	case key.Matches(msg, m.keys.PrevScreen):
		return m, m.switchScreen((m.list.screen - 1 + len(m.screens)) % len(m.screens))

	case key.Matches(msg, m.keys.JumpScreen):
		return m, m.switchScreen(int(msg.String()[0]-'1'))

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadRows(true)

	case key.Matches(msg, m.keys.New):
		if screen.Singleton() {
			return m, openEditCmd(m.ctx, screen, 0)
		}
		f, err := screen.OpenCreate()
		if err != nil {
			m.setFlash(errorText(err), errorStatus(err))
			return m, nil
		}
		return m, m.openForm(f)

	case key.Matches(msg, m.keys.Edit):
		if screen.Singleton() {
			return m, openEditCmd(m.ctx, screen, 0)
		}
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		return m, openEditCmd(m.ctx, screen, row.ID)

	case key.Matches(msg, m.keys.Delete):
		if screen.Singleton() {
			m.setFlash(screen.Title()+" cannot be deleted", "validation")
			return m, nil
		}
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		return m, prepareDeleteCmd(m.ctx, screen, row.ID)

	case key.Matches(msg, m.keys.MarkRead):
		marker, ok := screen.(admin.ReadMarker)
		if !ok {
			return m, nil
		}
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		return m, markReadCmd(m.ctx, m.list.screen, marker, row.ID)
	}

	var cmd tea.Cmd
	m.list.table, cmd = m.list.table.Update(msg)
	return m, cmd
}

// renderList renders the table for the screen in view.
func (m Model) renderList(height int) string {
	styles := m.theme.Styles()
	screen := m.currentScreen()
	if screen == nil {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render("No screens configured"))
	}

	title := fmt.Sprintf("%s (%d)", screen.Title(), len(m.list.rows))
	if m.list.stale {
		title += " · refreshing"
	}

	var body string
	switch {
	case !m.list.loaded && m.list.err != "":
		body = styles.DangerText.Render(m.list.err)
	case !m.list.loaded:
		body = m.spinner.View() + " Loading " + strings.ToLower(screen.Title()) + "..."
	case len(m.list.rows) == 0:
		body = styles.MutedText.Render("Nothing here yet. Press n to add one.")
	default:
		body = m.list.table.View()
	}

	return m.renderTitledBox(title, body, m.width, height, true)
}

// renderTitledBox renders content in a box with the title embedded in the top border:
// ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.Surface
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := newSurface(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 1))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.text("┌", borderStyle) +
		bg.text(strings.Repeat("─", leftPad), borderStyle) +
		bg.text(" "+title+" ", titleStyle) +
		bg.text(strings.Repeat("─", rightPad), borderStyle) +
		bg.text("┐", borderStyle)

	bottomBorder := bg.text("└", borderStyle) +
		bg.text(strings.Repeat("─", innerWidth), borderStyle) +
		bg.text("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(bg.bg)

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	lines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines,
			bg.text("│", borderStyle)+
				contentStyle.Render(line)+
				bg.text("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(lines, "\n") + "\n" + bottomBorder
}
