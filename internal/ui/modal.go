package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/backoffice/internal/admin"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// confirmModal asks before a delete is sent.
type confirmModal struct {
	ctx     context.Context
	pending *admin.PendingDelete
	busy    bool
	err     string
}

func newConfirmModal(ctx context.Context, p *admin.PendingDelete) *confirmModal {
	return &confirmModal{ctx: ctx, pending: p}
}

func (c *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	if c.busy {
		return c, nil, false
	}
	switch {
	case key.Matches(km, keys.ConfirmYes):
		c.busy = true
		c.err = ""
		return c, confirmDeleteCmd(c.ctx, c.pending), false
	case key.Matches(km, keys.ConfirmNo):
		c.pending.Cancel()
		return c, nil, true
	}
	return c, nil, false
}

func (c *confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(c.pending.Prompt()))
	b.WriteString("\n\n")
	switch {
	case c.busy:
		b.WriteString(styles.InfoText.Render("Deleting..."))
	case c.err != "":
		b.WriteString(styles.DangerText.Render(c.err))
		b.WriteString("\n\n")
		b.WriteString(styles.FaintText.Render("y retry · n cancel"))
	default:
		b.WriteString(styles.FaintText.Render("y delete · n cancel"))
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Danger)).
		Padding(1, 2).
		Width(min(60, max(width-4, 20))).
		Render(b.String())

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

// handleDeleteDone closes the modal after a delete or keeps it open with
// the error so the operator can retry or cancel.
func (m Model) handleDeleteDone(msg deleteDoneMsg) (tea.Model, tea.Cmd) {
	c, ok := m.modal.(*confirmModal)
	if ok && c.pending == msg.pending {
		c.busy = false
		if msg.err != nil {
			c.err = errorText(msg.err)
			if errorStatus(msg.err) == "auth_required" {
				m.modal = nil
				m.setFlash(c.err, "auth_required")
				return m, m.expireOnAuthError(msg.err)
			}
			return m, nil
		}
		m.modal = nil
	}
	if msg.err != nil {
		return m, nil
	}
	m.setFlash("Deleted "+string(msg.pending.Kind()), "authenticated")
	return m, m.loadRows(false)
}
