package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinefav/internal/controller"
	"github.com/desertthunder/cinefav/internal/forms"
	"github.com/desertthunder/cinefav/internal/services"
	"github.com/desertthunder/cinefav/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	RegisterView
	MoviesView
)

func (v ViewState) String() string {
	switch v {
	case LoginView:
		return "login"
	case RegisterView:
		return "register"
	case MoviesView:
		return "movies"
	default:
		return "unknown"
	}
}

// editing is the table input that currently owns the keyboard.
type editing int

const (
	editNone editing = iota
	editSearch
	editFilter
)

// Options wires the TUI to the catalog service and local storage.
type Options struct {
	Catalog     services.Catalog
	Auth        services.Authenticator
	Credentials services.CredentialProvider
	Memory      forms.EmailMemory
	Email       string // remembered address that pre-fills the login form

	// Authenticated starts on the movies view instead of the login form.
	Authenticated bool

	// Controller holds table and toast settings. Its Catalog and Logger are filled in from above.
	Controller controller.Options
	Logger     *log.Logger

	OpenURL  func(url string) error
	ReadFile func(path string) ([]byte, error)
	After    func(d time.Duration, msg tea.Msg) tea.Cmd
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	opts   Options
	logger *log.Logger
	view   ViewState
	width  int
	height int
	help   help.Model
	keys   keyMap
	init   tea.Cmd

	login      *forms.LoginForm
	register   *forms.RegisterForm
	authInputs []textinput.Model
	authFocus  int
	notice     string

	ctrl       *controller.Controller
	table      table.Model
	column     int
	editing    editing
	search     textinput.Model
	filter     textinput.Model
	formInputs []textinput.Model
	formFocus  int
	attached   string
	status     string
	scheduled  uint64
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}
	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}
	if opts.After == nil {
		opts.After = func(d time.Duration, msg tea.Msg) tea.Cmd {
			return tea.Tick(d, func(time.Time) tea.Msg { return msg })
		}
	}

	m := &Model{
		ctx:    ctx,
		opts:   opts,
		logger: opts.Logger,
		help:   help.New(),
		keys:   newKeyMap(),
		search: newInput("fuzzy search", false),
		filter: newInput("contains", false),
	}

	if opts.Authenticated {
		m.init = m.enterMovies()
	} else {
		m.enterLogin()
	}
	return m
}

// Init starts the first load when the session is already authenticated.
func (m *Model) Init() tea.Cmd {
	return m.init
}

// ViewState returns the active view.
func (m *Model) ViewState() ViewState { return m.view }

// Controller returns the movies controller, or nil outside the movies view.
func (m *Model) Controller() *controller.Controller { return m.ctrl }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case Msg:
		return m, m.handleMsg(msg)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, m.quit()
		}

		switch m.view {
		case LoginView:
			return m, m.handleLoginKeys(msg)
		case RegisterView:
			return m, m.handleRegisterKeys(msg)
		case MoviesView:
			return m, m.handleMoviesKeys(msg)
		}
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgAuthDone:
		return m.finishAuth(msg.data.(authDone))

	case MsgOpDone:
		done := msg.data.(opDone)
		next := done.ctrl.Apply(done.outcome)
		if done.ctrl != m.ctrl {
			return nil
		}
		m.syncTable()
		return tea.Batch(m.run(next), m.scheduleToast())

	case MsgToastExpired:
		if m.ctrl != nil {
			m.ctrl.ExpireToast(msg.data.(uint64))
		}

	case MsgPosterOpened:
		if err, _ := msg.data.(error); err != nil {
			m.status = fmt.Sprintf("Could not open poster: %v", err)
			m.logger.Warn("failed to open poster", "err", err)
		}
	}
	return nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case LoginView:
		body = m.renderLogin()
	case RegisterView:
		body = m.renderRegister()
	case MoviesView:
		body = m.renderMovies()
	}

	if toast := m.renderToast(); toast != "" {
		return lipgloss.JoinVertical(lipgloss.Left, toast, body)
	}
	return body
}

// run turns a controller op into a command whose result is applied by the controller that issued it.
func (m *Model) run(op *controller.Op) tea.Cmd {
	if op == nil {
		return nil
	}
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return opDoneMsg(ctrl, op.Run(ctx))
	}
}

// scheduleToast arms the expiry timer for a toast that has not been scheduled yet.
func (m *Model) scheduleToast() tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	t, ok := m.ctrl.Toast()
	if !ok || t.Gen == m.scheduled {
		return nil
	}
	m.scheduled = t.Gen
	return m.opts.After(m.ctrl.ToastLifetime(), toastExpiredMsg(t.Gen))
}

func (m *Model) quit() tea.Cmd {
	if m.ctrl != nil {
		m.ctrl.Detach()
	}
	return tea.Quit
}

func (m *Model) renderToast() string {
	if m.ctrl == nil {
		return ""
	}
	t, ok := m.ctrl.Toast()
	if !ok {
		return ""
	}

	style := styles.toastOK
	if t.Kind == controller.ToastError {
		style = styles.toastErr
	}
	box := style.Render(t.Message)
	if m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, box)
	}
	return box
}

// center places a dialog in the middle of the terminal once its size is known.
func (m *Model) center(s string) string {
	if m.width == 0 || m.height == 0 {
		return s
	}
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, s)
}

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 40
	ti.Cursor.SetMode(cursor.CursorStatic)
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

// focusInput focuses inputs[i] and blurs the rest.
func focusInput(inputs []textinput.Model, i int) {
	for j := range inputs {
		if j == i {
			inputs[j].Focus()
		} else {
			inputs[j].Blur()
		}
	}
}

func wrapFocus(i, delta, n int) int {
	if n == 0 {
		return 0
	}
	return ((i+delta)%n + n) % n
}

func label(name string, focused bool) string {
	if focused {
		return styles.focus.Render("› " + name)
	}
	return styles.label.Render("  " + name)
}

func fieldError(msg string) string {
	if msg == "" {
		return ""
	}
	return "\n" + strings.Repeat(" ", 12) + styles.err.Render(msg)
}
