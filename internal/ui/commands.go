package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/backoffice/internal/admin"
	"github.com/five82/backoffice/internal/content"
	"github.com/five82/backoffice/internal/logtail"
	"github.com/five82/backoffice/internal/photos"
	"github.com/five82/backoffice/internal/query"
	"github.com/five82/backoffice/internal/session"
)

// Messages

type tickMsg time.Time

type initDoneMsg struct{ err error }

type sessionChangeMsg session.Change

type loginDoneMsg struct {
	username string
	err      error
}

type logoutDoneMsg struct{ err error }

type rowsMsg struct {
	screen int
	rows   []admin.Row
	err    error
}

type statsMsg struct {
	stats content.AboutStats
	err   error
}

type formOpenedMsg struct {
	form admin.FormHandle
	err  error
}

type formSavedMsg struct {
	form admin.FormHandle
	err  error
}

type photoReadMsg struct {
	form   admin.FormHandle
	result photos.Result
}

type deletePreparedMsg struct {
	pending *admin.PendingDelete
	err     error
}

type deleteDoneMsg struct {
	pending *admin.PendingDelete
	err     error
}

type markReadMsg struct {
	screen int
	id     int64
	err    error
}

type activityMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func initCmd(ctx context.Context, sess *session.Service) tea.Cmd {
	return func() tea.Msg {
		return initDoneMsg{err: sess.Initialize(ctx)}
	}
}

// waitForChange delivers the next session transition. It returns nil once
// the service is torn down.
func waitForChange(ch <-chan session.Change) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return sessionChangeMsg(c)
	}
}

func loginCmd(ctx context.Context, sess *session.Service, username, password string) tea.Cmd {
	return func() tea.Msg {
		_, err := sess.Login(ctx, username, password)
		return loginDoneMsg{username: username, err: err}
	}
}

func logoutCmd(ctx context.Context, sess *session.Service) tea.Cmd {
	return func() tea.Msg {
		_, err := sess.Logout(ctx)
		return logoutDoneMsg{err: err}
	}
}

func loadRowsCmd(ctx context.Context, idx int, screen admin.Screen, force bool) tea.Cmd {
	return func() tea.Msg {
		var (
			rows []admin.Row
			err  error
		)
		if force {
			rows, err = screen.RefreshRows(ctx)
		} else {
			rows, err = screen.Rows(ctx)
		}
		return rowsMsg{screen: idx, rows: rows, err: err}
	}
}

func statsCmd(ctx context.Context, qc *query.Client) tea.Cmd {
	if qc == nil {
		return nil
	}
	return func() tea.Msg {
		stats, err := admin.AboutStats(ctx, qc)
		return statsMsg{stats: stats, err: err}
	}
}

func openEditCmd(ctx context.Context, screen admin.Screen, id int64) tea.Cmd {
	return func() tea.Msg {
		f, err := screen.OpenEdit(ctx, id)
		return formOpenedMsg{form: f, err: err}
	}
}

func saveCmd(ctx context.Context, f admin.FormHandle) tea.Cmd {
	return func() tea.Msg {
		return formSavedMsg{form: f, err: f.Submit(ctx)}
	}
}

func photoCmd(f admin.FormHandle, ch <-chan photos.Result) tea.Cmd {
	return func() tea.Msg {
		return photoReadMsg{form: f, result: <-ch}
	}
}

func prepareDeleteCmd(ctx context.Context, screen admin.Screen, id int64) tea.Cmd {
	return func() tea.Msg {
		p, err := screen.PrepareDelete(ctx, id)
		return deletePreparedMsg{pending: p, err: err}
	}
}

func confirmDeleteCmd(ctx context.Context, p *admin.PendingDelete) tea.Cmd {
	return func() tea.Msg {
		return deleteDoneMsg{pending: p, err: p.Confirm(ctx)}
	}
}

func markReadCmd(ctx context.Context, idx int, marker admin.ReadMarker, id int64) tea.Cmd {
	return func() tea.Msg {
		return markReadMsg{screen: idx, id: id, err: marker.MarkRead(ctx, id)}
	}
}

func activityCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, ActivityLines)
		return activityMsg{lines: lines, err: err}
	}
}
