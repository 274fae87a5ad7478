package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/backoffice/internal/admin"
	"github.com/five82/backoffice/internal/api"
	"github.com/five82/backoffice/internal/photos"
	"github.com/five82/backoffice/internal/session"
)

const logo = "◆ backoffice"

// renderHeader renders the logo, the session badge and the server state.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := newSurface(m.theme.Surface)

	parts := []string{bg.text(logo, styles.Logo)}

	state := session.Unauthenticated
	if m.sess != nil {
		state = m.sess.State()
	}
	parts = append(parts, styles.StatusStyle(state.String()).Render(state.String()))
	if m.user != nil {
		parts = append(parts, bg.text(m.user.Username, styles.Text))
	}

	if m.qc != nil && m.qc.Cache().Stats().IsOffline() {
		parts = append(parts, styles.StatusStyle("offline").Render("offline"))
	}

	if m.stats != nil && m.width >= LayoutCompactWidth {
		s := m.stats
		summary := fmt.Sprintf("%d yrs · %d projects · %d clients · %d awards", s.Years, s.Projects, s.Clients, s.Awards)
		parts = append(parts, bg.text(summary, styles.MutedText))
	}

	return bg.row(bg.join(parts...), m.width)
}

// renderTabs renders the screen names with the active one highlighted.
func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	bg := newSurface(m.theme.SurfaceAlt)

	if m.view == ViewLogin || m.view == ViewLoading {
		return bg.row("", m.width)
	}

	tabs := make([]string, 0, len(m.screens))
	for i, s := range m.screens {
		label := fmt.Sprintf("%d %s", i+1, s.Title())
		if i == m.list.screen {
			tabs = append(tabs, styles.Selected.Padding(0, 1).Render(label))
			continue
		}
		tabs = append(tabs, bg.text(" "+label+" ", styles.MutedText))
	}
	if m.view == ViewActivity {
		tabs = append(tabs, styles.Selected.Padding(0, 1).Render("a Activity"))
	}
	return bg.row(lipgloss.JoinHorizontal(lipgloss.Top, tabs...), m.width)
}

// renderFooter renders the latest status message or the key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	bg := newSurface(m.theme.Surface)

	if m.flash.text != "" {
		badge := styles.StatusStyle(m.flash.status).Render(titleCase(m.flash.status))
		return bg.row(bg.join(badge, bg.text(truncate(m.flash.text, m.width-20), styles.Text)), m.width)
	}

	var hints string
	switch m.view {
	case ViewList:
		hints = "n new · enter edit · d delete · r reload · tab screens · a activity · L sign out · ? help · q quit"
		if _, ok := m.currentScreen().(admin.ReadMarker); ok {
			hints = "m mark read · " + hints
		}
	case ViewForm:
		hints = "tab next field · ctrl+s save · esc cancel"
	case ViewActivity:
		hints = "space follow · r reload · esc back"
	default:
		hints = "ctrl+c quit"
	}
	return bg.row(bg.text(truncate(hints, m.width-2), styles.FaintText), m.width)
}

// errorStatus maps an error to the theme status used for its badge.
func errorStatus(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind.String()
	}
	switch {
	case errors.Is(err, admin.ErrValidation), errors.Is(err, photos.ErrBusy):
		return "validation"
	default:
		return "transport"
	}
}

// errorText is the operator-facing message for err.
func errorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case api.KindAuthRequired:
			return "Your session has expired. Sign in again."
		case api.KindNotFound:
			return "That item no longer exists."
		case api.KindValidation:
			if apiErr.Message != "" {
				return "Rejected: " + apiErr.Message
			}
			return "The server rejected the request."
		default:
			return "Could not reach the server."
		}
	}
	msg := err.Error()
	if msg == "" {
		return "Something went wrong."
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
