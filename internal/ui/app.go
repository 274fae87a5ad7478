package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/five82/backoffice/internal/admin"
	"github.com/five82/backoffice/internal/content"
	"github.com/five82/backoffice/internal/prefs"
	"github.com/five82/backoffice/internal/query"
	"github.com/five82/backoffice/internal/session"
)

// View represents the current active view.
type View int

const (
	ViewLoading View = iota
	ViewLogin
	ViewList
	ViewForm
	ViewActivity
)

// Watcher is told which list key is on screen so it can be kept fresh. An
// empty key means nothing is on screen.
type Watcher interface {
	Watch(key string)
}

// Options configures the UI.
type Options struct {
	Context      context.Context
	Session      *session.Service
	Query        *query.Client
	Screens      []admin.Screen
	Watcher      Watcher
	PollTick     time.Duration
	ThemeName    string
	PrefsPath    string
	LastUsername string
	LogPath      string
	// Logger defaults to a no-op logger.
	Logger       *zerolog.Logger
}

type flash struct {
	text   string
	status string
	at     time.Time
}

type loginState struct {
	inputs [2]textinput.Model // username, password
	focus  int
	err    string
	busy   bool
}

type listState struct {
	screen int
	rows   []admin.Row
	stale  bool
	loaded bool
	err    string
	table  table.Model
}

type formState struct {
	handle admin.FormHandle
	fields []admin.FieldState
	// inputs holds one input per field followed by the photo input.
	inputs []textinput.Model
	focus  int
	photo  int
	saving bool
}

type activityState struct {
	viewport viewport.Model
	entries  int
	follow   bool
	err      string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	sess      *session.Service
	qc        *query.Client
	screens   []admin.Screen
	watcher   Watcher
	changes   <-chan session.Change
	prefsPath string
	logPath   string
	pollTick  time.Duration
	log       zerolog.Logger

	// UI state
	theme    Theme
	keys     keyMap
	spinner  spinner.Model
	view     View
	width    int
	height   int
	ready    bool
	showHelp bool
	authed   bool

	// Data state
	user  *content.User
	stats *content.AboutStats
	flash flash

	login    loginState
	list     listState
	form     formState
	modal    Modal
	activity activityState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = themeOrder[0]
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	m := Model{
		log:       log,
		ctx:       ctx,
		sess:      opts.Session,
		qc:        opts.Query,
		screens:   opts.Screens,
		watcher:   opts.Watcher,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		pollTick:  pollTick,
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		view:      ViewLoading,
		activity:  activityState{follow: true},
	}
	if m.sess != nil {
		m.changes = m.sess.Subscribe()
	}
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.login = newLoginState(opts.LastUsername)
	m.list.table = m.newTable()
	m.activity.viewport = viewport.New(0, 0)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
		m.spinner.Tick,
		textinput.Blink,
		waitForChange(m.changes),
	}
	if m.sess != nil {
		cmds = append(cmds, initCmd(m.ctx, m.sess))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case initDoneMsg:
		if msg.err != nil {
			m.setFlash("Could not reach the server: "+msg.err.Error(), "transport")
		}
		return m, m.syncSession()

	case sessionChangeMsg:
		if msg.From == session.Authenticated && msg.To == session.Unauthenticated && m.authed {
			m.setFlash("Signed out", "unauthenticated")
		}
		return m, tea.Batch(m.syncSession(), waitForChange(m.changes))

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case logoutDoneMsg:
		if msg.err != nil {
			m.setFlash("Signed out locally; the server did not answer", "transport")
		}
		return m, m.syncSession()

	case rowsMsg:
		return m, m.handleRows(msg)

	case statsMsg:
		if msg.err == nil {
			s := msg.stats
			m.stats = &s
		}
		return m, nil

	case formOpenedMsg:
		if msg.err != nil {
			m.setFlash(errorText(msg.err), errorStatus(msg.err))
			return m, nil
		}
		return m, m.openForm(msg.form)

	case formSavedMsg:
		return m.handleFormSaved(msg)

	case photoReadMsg:
		return m.handlePhotoRead(msg)

	case deletePreparedMsg:
		if msg.err != nil {
			m.setFlash(errorText(msg.err), errorStatus(msg.err))
			return m, nil
		}
		m.modal = newConfirmModal(m.ctx, msg.pending)
		return m, nil

	case deleteDoneMsg:
		return m.handleDeleteDone(msg)

	case markReadMsg:
		if msg.err != nil {
			m.setFlash(errorText(msg.err), errorStatus(msg.err))
			return m, m.expireOnAuthError(msg.err)
		}
		m.setFlash("Inquiry marked read", "authenticated")
		return m, m.loadRows(false)

	case activityMsg:
		m.handleActivity(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	// Views with text inputs take every other key.
	switch m.view {
	case ViewLogin:
		return m.handleLoginKey(msg)
	case ViewForm:
		return m.handleFormKey(msg)
	case ViewLoading:
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "T":
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.list.table.SetStyles(m.tableStyles())
		m.saveTheme()
		return m, nil

	case "L":
		return m, logoutCmd(m.ctx, m.sess)

	case "a":
		if m.view == ViewActivity {
			m.view = ViewList
			return m, nil
		}
		m.view = ViewActivity
		return m, activityCmd(m.logPath)

	case "esc":
		m.view = ViewList
		return m, nil
	}

	switch m.view {
	case ViewList:
		return m.handleListKey(msg)
	case ViewActivity:
		return m.handleActivityKey(msg)
	}
	return m, nil
}

// handleTick re-reads the cache for the list in view and schedules the
// next tick. The network refresh itself is done by the Watcher.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.view == ViewList && m.list.loaded {
		if screen := m.currentScreen(); screen != nil {
			if rows, stale, ok := screen.CachedRows(); ok {
				m.setRows(rows, stale)
			}
		}
	}

	if m.view == ViewActivity && m.activity.follow {
		cmds = append(cmds, activityCmd(m.logPath))
	}

	if !m.flash.at.IsZero() && time.Since(m.flash.at) > FlashDuration {
		m.flash = flash{}
	}

	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// syncSession aligns the view with the session state. Becoming
// authenticated loads the screen in view.
func (m *Model) syncSession() tea.Cmd {
	if m.sess == nil {
		return nil
	}
	switch m.sess.State() {
	case session.Loading:
		m.view = ViewLoading
		return nil

	case session.Authenticated:
		if u, ok := m.sess.CurrentUser(); ok {
			m.user = &u
		}
		if m.authed {
			return nil
		}
		m.authed = true
		m.login.busy = false
		m.login.err = ""
		m.login.inputs[1].SetValue("")
		if m.form.handle != nil && m.form.handle.IsOpen() {
			m.view = ViewForm
		} else {
			m.view = ViewList
		}
		m.watch()
		return tea.Batch(m.loadRows(false), statsCmd(m.ctx, m.qc))

	default:
		m.user = nil
		m.authed = false
		m.login.busy = false
		if m.watcher != nil {
			m.watcher.Watch("")
		}
		m.view = ViewLogin
		return m.focusLogin(m.login.focus)
	}
}

func (m *Model) expireOnAuthError(err error) tea.Cmd {
	if errorStatus(err) != "auth_required" || m.sess == nil {
		return nil
	}
	m.sess.Expire()
	return m.syncSession()
}

func (m *Model) currentScreen() admin.Screen {
	if m.list.screen < 0 || m.list.screen >= len(m.screens) {
		return nil
	}
	return m.screens[m.list.screen]
}

func (m *Model) watch() {
	if m.watcher == nil {
		return
	}
	if screen := m.currentScreen(); screen != nil {
		m.watcher.Watch(screen.ListKey())
	}
}

func (m *Model) setFlash(text, status string) {
	m.flash = flash{text: text, status: status, at: time.Now()}
}

func (m *Model) saveTheme() {
	if m.prefsPath == "" {
		return
	}
	name := m.theme.Name
	if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.Theme = name }); err != nil {
		m.log.Warn().Err(err).Str("path", m.prefsPath).Str("theme", name).Msg("save theme preference")
	}
}

func (m *Model) resize() {
	contentHeight := m.contentHeight()
	m.list.table.SetWidth(max(m.width-2, 10))
	m.list.table.SetHeight(max(contentHeight-3, 3))
	m.activity.viewport.Width = max(m.width-2, 10)
	m.activity.viewport.Height = max(contentHeight-2, 3)
	for i := range m.form.inputs {
		m.form.inputs[i].Width = m.inputWidth()
	}
}

// contentHeight is the height left for a view under the header and tabs
// and above the footer.
func (m Model) contentHeight() int {
	return max(m.height-3, 5)
}

func (m Model) inputWidth() int {
	return max(m.width-LayoutLabelWidth-8, 20)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	height := m.contentHeight()
	switch m.view {
	case ViewLoading:
		msg := m.spinner.View() + " Checking session..."
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, msg)
	case ViewLogin:
		return m.renderLogin(height)
	case ViewList:
		return m.renderList(height)
	case ViewForm:
		return m.renderForm(height)
	case ViewActivity:
		return m.renderActivity(height)
	default:
		return ""
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
