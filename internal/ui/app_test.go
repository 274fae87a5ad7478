package ui

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/five82/backoffice/internal/admin"
	"github.com/five82/backoffice/internal/api"
	"github.com/five82/backoffice/internal/cache"
	"github.com/five82/backoffice/internal/devserver"
	"github.com/five82/backoffice/internal/prefs"
	"github.com/five82/backoffice/internal/query"
	"github.com/five82/backoffice/internal/session"
)

// harness drives a Model the way the Bubble Tea runtime would, but only
// runs the commands a test hands it. Ticks and cursor blinks never run.
type harness struct {
	t         *testing.T
	m         Model
	sess      *session.Service
	prefsPath string
	logPath   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv, err := devserver.New(devserver.Config{
		AdminUsername: "admin",
		AdminPassword: "correctpass",
		AdminEmail:    "admin@example.com",
		BcryptCost:    bcrypt.MinCost,
		Seed:          true,
		Years:         12,
		Awards:        3,
		Logger:        zerolog.Nop(),
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	client, err := api.NewClient(api.Options{BaseURL: ts.URL})
	require.NoError(t, err)
	qc := query.New(client, cache.New(), zerolog.Nop())
	sess := session.New(qc, zerolog.Nop())
	t.Cleanup(sess.Teardown)

	dir := t.TempDir()
	h := &harness{
		t:         t,
		sess:      sess,
		prefsPath: filepath.Join(dir, "prefs.toml"),
		logPath:   filepath.Join(dir, "backoffice.log"),
	}
	h.m = New(Options{
		Context:   context.Background(),
		Session:   sess,
		Query:     qc,
		Screens:   admin.NewScreens(qc),
		PrefsPath: h.prefsPath,
		LogPath:   h.logPath,
	})
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	h.settle(initCmd(h.m.ctx, sess))
	require.Equal(t, ViewLogin, h.m.view)
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) press(keys ...string) tea.Cmd {
	h.t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		cmd = h.send(keyMsg(k))
	}
	return cmd
}

func (h *harness) typeText(s string) {
	h.t.Helper()
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// settle runs cmd, feeds its messages back into the model and returns the
// follow-up commands without running them.
func (h *harness) settle(cmd tea.Cmd) tea.Cmd {
	h.t.Helper()
	var next []tea.Cmd
	for _, msg := range collect(h.t, cmd) {
		next = append(next, h.send(msg))
	}
	return tea.Batch(next...)
}

func (h *harness) signIn(password string) tea.Cmd {
	h.t.Helper()
	h.typeText("admin")
	h.press("tab")
	h.typeText(password)
	return h.settle(h.press("enter"))
}

func (h *harness) signedIn() {
	h.t.Helper()
	h.settle(h.signIn("correctpass"))
	require.Equal(h.t, ViewList, h.m.view)
}

func collect(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("command did not finish")
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(t, c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func TestLoginShowsProducts(t *testing.T) {
	h := newHarness(t)
	h.signedIn()

	assert.Len(t, h.m.list.rows, 3)
	require.NotNil(t, h.m.user)
	assert.Equal(t, "admin", h.m.user.Username)
	require.NotNil(t, h.m.stats)
	assert.Equal(t, 12, h.m.stats.Years)

	view := h.m.View()
	assert.Contains(t, view, "Products")
	assert.Contains(t, view, "authenticated")

	p, err := prefs.Load(h.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, "admin", p.LastUsername)
}

func TestWrongPasswordStaysOnLogin(t *testing.T) {
	h := newHarness(t)
	h.signIn("wrongpass")

	assert.Equal(t, ViewLogin, h.m.view)
	assert.Equal(t, "Wrong username or password.", h.m.login.err)
	assert.Empty(t, h.m.login.inputs[1].Value())
	assert.Equal(t, 1, h.m.login.focus)
	assert.Equal(t, session.Unauthenticated, h.sess.State())
}

func TestJumpToGallery(t *testing.T) {
	h := newHarness(t)
	h.signedIn()

	h.settle(h.press("3"))
	assert.Equal(t, 2, h.m.list.screen)
	assert.Len(t, h.m.list.rows, 5)

	h.settle(h.press("tab"))
	assert.Equal(t, 3, h.m.list.screen)
	assert.Len(t, h.m.list.rows, 2)
}

func TestCreateProductFromForm(t *testing.T) {
	h := newHarness(t)
	h.signedIn()

	h.press("n")
	require.Equal(t, ViewForm, h.m.view)
	h.typeText("Brass lamp")
	h.press("tab", "tab")
	h.typeText("Lighting")

	h.settle(h.settle(h.press("ctrl+s")))
	assert.Equal(t, ViewList, h.m.view)
	assert.Len(t, h.m.list.rows, 4)
	assert.Contains(t, h.m.flash.text, "Saved")
}

func TestInvalidFormStaysOpen(t *testing.T) {
	h := newHarness(t)
	h.signedIn()

	h.press("n")
	h.settle(h.press("ctrl+s"))

	require.Equal(t, ViewForm, h.m.view)
	errs := map[string]string{}
	for _, f := range h.m.form.fields {
		errs[f.Name] = f.Error
	}
	assert.NotEmpty(t, errs["name"])
	assert.NotEmpty(t, errs["category"])
	assert.False(t, h.m.form.saving)

	h.press("esc")
	assert.Equal(t, ViewList, h.m.view)
	assert.Len(t, h.m.list.rows, 3)
}

func TestDeleteGalleryItem(t *testing.T) {
	h := newHarness(t)
	h.signedIn()
	h.settle(h.press("3"))

	h.settle(h.press("d"))
	require.NotNil(t, h.m.modal)
	assert.Contains(t, h.m.View(), "Delete")

	h.settle(h.settle(h.press("y")))
	assert.Nil(t, h.m.modal)
	assert.Len(t, h.m.list.rows, 4)
	assert.Equal(t, "Deleted gallery", h.m.flash.text)
}

func TestCancelDeleteKeepsRows(t *testing.T) {
	h := newHarness(t)
	h.signedIn()
	h.settle(h.press("3"))

	h.settle(h.press("d"))
	require.NotNil(t, h.m.modal)
	assert.Nil(t, h.press("n"))
	assert.Nil(t, h.m.modal)

	h.settle(h.press("r"))
	assert.Len(t, h.m.list.rows, 5)
}

func TestMarkInquiryReadFromList(t *testing.T) {
	h := newHarness(t)
	h.signedIn()
	h.settle(h.press("6"))
	require.Len(t, h.m.list.rows, 1)

	h.settle(h.settle(h.press("m")))
	assert.Equal(t, "Inquiry marked read", h.m.flash.text)
	assert.Len(t, h.m.list.rows, 1)
}

func TestHelpToggle(t *testing.T) {
	h := newHarness(t)
	h.signedIn()

	h.press("?")
	assert.True(t, h.m.showHelp)
	assert.Contains(t, h.m.View(), "Screens")

	h.press("x")
	assert.False(t, h.m.showHelp)
	assert.Equal(t, ViewList, h.m.view)
}

func TestCycleThemeSavesPreference(t *testing.T) {
	h := newHarness(t)
	h.signedIn()

	h.press("T")
	assert.Equal(t, "Kanagawa", h.m.theme.Name)

	p, err := prefs.Load(h.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, "Kanagawa", p.Theme)
	assert.Equal(t, "admin", p.LastUsername)
}

func TestActivityReadsLog(t *testing.T) {
	h := newHarness(t)
	h.signedIn()

	lines := []string{
		`{"level":"info","component":"session","time":"2026-10-18T09:00:00Z","message":"signed in"}`,
		`{"level":"warn","component":"poller","time":"2026-10-18T09:00:30Z","message":"refresh failed","error":"connection refused"}`,
	}
	require.NoError(t, os.WriteFile(h.logPath, []byte(strings.Join(lines, "\n")+"\n"), 0o600))

	h.settle(h.press("a"))
	assert.Equal(t, ViewActivity, h.m.view)
	assert.Equal(t, 2, h.m.activity.entries)
	assert.Contains(t, h.m.View(), "refresh failed")

	h.press("a")
	assert.Equal(t, ViewList, h.m.view)
}

func TestLogoutReturnsToLogin(t *testing.T) {
	h := newHarness(t)
	h.signedIn()

	h.settle(h.press("L"))
	assert.Equal(t, ViewLogin, h.m.view)
	assert.Nil(t, h.m.user)
	assert.Equal(t, session.Unauthenticated, h.sess.State())
}

func TestUnwritablePrefsAreLoggedNotFatal(t *testing.T) {
	h := newHarness(t)
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	h.m.prefsPath = filepath.Join(blocker, "prefs.toml")
	var logs bytes.Buffer
	h.m.log = zerolog.New(&logs)

	h.signedIn()
	assert.Contains(t, logs.String(), "save last username")

	h.press("T")
	assert.Equal(t, "Kanagawa", h.m.theme.Name)
	assert.Contains(t, logs.String(), "save theme preference")
	assert.Equal(t, ViewList, h.m.view)
}
