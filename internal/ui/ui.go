package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hardbound/stacks/internal/models"
	"github.com/hardbound/stacks/internal/services"
	"github.com/hardbound/stacks/internal/session"
	"github.com/hardbound/stacks/internal/shared"
	"github.com/hardbound/stacks/internal/theme"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	RegisterView
	DashboardView
	BooksView
	LoansView
)

// loansRefreshInterval drives the periodic re-fetch of the loans view.
const loansRefreshInterval = 30 * time.Second

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	sess    *session.Store
	themes  *theme.Store
	library services.Service

	view      ViewState
	width     int
	height    int
	spinner   spinner.Model
	inputs    []textinput.Model
	focus     int
	formError string
	bookList  list.Model
	loanList  list.Model
	stats     *models.Stats
	err       error
	help      help.Model
	keys      keyMap
}

type bootstrapDoneMsg struct{}

type authDoneMsg struct {
	identity *models.Identity
	err      error
}

type statsFetchedMsg struct {
	stats *models.Stats
	err   error
}

type booksFetchedMsg struct {
	books []models.Book
	err   error
}

type loansFetchedMsg struct {
	loans []models.Loan
	err   error
}

type loansTickMsg time.Time

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, sess *session.Store, themes *theme.Store, library services.Service) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:     ctx,
		sess:    sess,
		themes:  themes,
		library: library,
		view:    LoginView,
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.setupLoginForm()
	return m
}

// Init starts the spinner and kicks off session bootstrap.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.bootstrap())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.bookList.Width() == 0 {
			m.bookList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.loanList.Width() == 0 {
			m.loanList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case spinner.TickMsg:
		if m.sess.Phase() == session.PhaseBootstrapping || m.sess.Pending() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case bootstrapDoneMsg:
		if m.sess.Authenticated() {
			m.view = DashboardView
			return m, m.fetchStats()
		}
		m.view = LoginView
		return m, nil

	case authDoneMsg:
		if msg.err != nil {
			// The store already holds the user-facing text; stay on the form.
			return m, nil
		}
		m.view = DashboardView
		return m, m.fetchStats()

	case statsFetchedMsg:
		if msg.err != nil {
			if m.expireSession(msg.err) {
				return m, nil
			}
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.stats = msg.stats
		return m, nil

	case booksFetchedMsg:
		if msg.err != nil {
			if m.expireSession(msg.err) {
				return m, nil
			}
			m.err = msg.err
			m.view = DashboardView
			return m, nil
		}
		items := make([]list.Item, len(msg.books))
		for i, book := range msg.books {
			items[i] = bookItem{book: book}
		}
		m.bookList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.bookList.Title = "Catalog"
		m.bookList.SetSize(m.width-4, m.height-8)
		m.view = BooksView
		return m, nil

	case loansFetchedMsg:
		if msg.err != nil {
			if m.expireSession(msg.err) {
				return m, nil
			}
			m.err = msg.err
			m.view = DashboardView
			return m, nil
		}
		now := time.Now()
		items := make([]list.Item, len(msg.loans))
		for i, loan := range msg.loans {
			items[i] = loanItem{loan: loan, now: now}
		}
		m.loanList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.loanList.Title = "Open Loans"
		m.loanList.SetSize(m.width-4, m.height-8)
		m.view = LoansView
		return m, m.scheduleLoansRefresh()

	case loansTickMsg:
		if m.view != LoansView {
			return m, nil
		}
		return m, m.fetchLoans()

	case tea.KeyMsg:
		switch m.view {
		case LoginView, RegisterView:
			return m.handleFormKeys(msg)
		case DashboardView:
			return m.handleDashboardKeys(msg)
		case BooksView:
			return m.handleBooksKeys(msg)
		case LoansView:
			return m.handleLoansKeys(msg)
		}
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state, gated by the route guard.
func (m *Model) View() string {
	styles := paletteFor(m.themes.Mode())

	switch Resolve(m.sess.Phase(), m.sess.Authenticated()) {
	case GuardLoading:
		return fmt.Sprintf("\n  %s Restoring session...\n", m.spinner.View())
	case GuardRedirect:
		switch m.view {
		case RegisterView:
			return m.renderRegister(styles)
		default:
			return m.renderLogin(styles)
		}
	}

	switch m.view {
	case LoginView, RegisterView, DashboardView:
		return m.renderDashboard(styles)
	case BooksView:
		return m.renderBooks()
	case LoansView:
		return m.renderLoans()
	default:
		return ""
	}
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+r":
		if m.view == RegisterView {
			m.view = LoginView
			m.setupLoginForm()
		} else {
			m.view = RegisterView
			m.setupRegisterForm()
		}
		return m, nil
	case "tab", "down":
		m.cycleFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.cycleFocus(-1)
		return m, nil
	case "enter":
		if m.sess.Pending() {
			return m, nil
		}
		if m.view == RegisterView {
			return m, m.submitRegister()
		}
		return m, m.submitLogin()
	}

	return m, m.updateInputs(msg)
}

func (m *Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.books):
		return m, m.fetchBooks()
	case key.Matches(msg, m.keys.loans):
		return m, m.fetchLoans()
	case key.Matches(msg, m.keys.theme):
		m.themes.Toggle()
		return m, nil
	case key.Matches(msg, m.keys.logout):
		m.logout()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleBooksKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = DashboardView
		return m, m.fetchStats()
	case "t":
		if m.bookList.FilterState() != list.Filtering {
			m.themes.Toggle()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.bookList, cmd = m.bookList.Update(msg)
	return m, cmd
}

func (m *Model) handleLoansKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = DashboardView
		return m, m.fetchStats()
	case "t":
		if m.loanList.FilterState() != list.Filtering {
			m.themes.Toggle()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.loanList, cmd = m.loanList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case BooksView:
		m.bookList, cmd = m.bookList.Update(msg)
	case LoansView:
		m.loanList, cmd = m.loanList.Update(msg)
	}
	return m, cmd
}

func (m *Model) bootstrap() tea.Cmd {
	return func() tea.Msg {
		m.sess.Bootstrap(m.ctx)
		return bootstrapDoneMsg{}
	}
}

func (m *Model) submitLogin() tea.Cmd {
	username := m.inputs[0].Value()
	password := m.inputs[1].Value()

	// Form-level validation stays in the view layer; the store never sees
	// credentials it would have to reject for shape.
	if username == "" || password == "" {
		m.formError = "Username and password are required."
		return nil
	}
	m.formError = ""

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		identity, err := m.sess.Login(m.ctx, username, password)
		return authDoneMsg{identity: identity, err: err}
	})
}

func (m *Model) submitRegister() tea.Cmd {
	reg := models.Registration{
		Username: m.inputs[0].Value(),
		Email:    m.inputs[1].Value(),
		Password: m.inputs[2].Value(),
	}

	if reg.Username == "" || reg.Email == "" || reg.Password == "" {
		m.formError = "Username, email and password are required."
		return nil
	}
	m.formError = ""

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		identity, err := m.sess.Register(m.ctx, reg)
		return authDoneMsg{identity: identity, err: err}
	})
}

// expireSession tears the session down when an authenticated fetch comes back
// with an authorization failure: the token was revoked mid-session, so the
// principal must not survive it. Returns true when the error was handled.
func (m *Model) expireSession(err error) bool {
	if !errors.Is(err, shared.ErrNotAuthenticated) {
		return false
	}

	m.sess.Invalidate()
	m.stats = nil
	m.err = nil
	m.view = LoginView
	m.setupLoginForm()
	return true
}

func (m *Model) logout() {
	m.sess.Logout()
	m.stats = nil
	m.err = nil
	m.view = LoginView
	m.setupLoginForm()
}

func (m *Model) fetchStats() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.library.Stats(m.ctx)
		return statsFetchedMsg{stats: stats, err: err}
	}
}

func (m *Model) fetchBooks() tea.Cmd {
	return func() tea.Msg {
		books, err := m.library.ListBooks(m.ctx, "")
		return booksFetchedMsg{books: books, err: err}
	}
}

func (m *Model) fetchLoans() tea.Cmd {
	return func() tea.Msg {
		loans, err := m.library.ListLoans(m.ctx, true)
		return loansFetchedMsg{loans: loans, err: err}
	}
}

func (m *Model) scheduleLoansRefresh() tea.Cmd {
	return tea.Tick(loansRefreshInterval, func(t time.Time) tea.Msg {
		return loansTickMsg(t)
	})
}

func (m *Model) setupLoginForm() {
	username := textinput.New()
	username.Placeholder = "username"
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	m.inputs = []textinput.Model{username, password}
	m.focus = 0
	m.formError = ""
}

func (m *Model) setupRegisterForm() {
	username := textinput.New()
	username.Placeholder = "username"
	username.Focus()

	email := textinput.New()
	email.Placeholder = "email"

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	m.inputs = []textinput.Model{username, email, password}
	m.focus = 0
	m.formError = ""
}

func (m *Model) cycleFocus(delta int) {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

func (m *Model) renderLogin(styles *Palette) string {
	title := styles.title.Render("stacks — sign in")

	body := ""
	for i := range m.inputs {
		body += m.inputs[i].View() + "\n"
	}

	status := m.renderFormStatus(styles)
	helpView := styles.help.Render("enter submit • tab next field • ctrl+r create account • ctrl+c quit")

	return fmt.Sprintf("%s\n%s%s\n%s", title, body, status, helpView)
}

func (m *Model) renderRegister(styles *Palette) string {
	title := styles.title.Render("stacks — create account")

	body := ""
	for i := range m.inputs {
		body += m.inputs[i].View() + "\n"
	}

	status := m.renderFormStatus(styles)
	helpView := styles.help.Render("enter submit • tab next field • ctrl+r back to sign in • ctrl+c quit")

	return fmt.Sprintf("%s\n%s%s\n%s", title, body, status, helpView)
}

func (m *Model) renderFormStatus(styles *Palette) string {
	if m.sess.Pending() {
		return fmt.Sprintf("\n%s working...\n", m.spinner.View())
	}
	if m.formError != "" {
		return "\n" + styles.err.Render(m.formError) + "\n"
	}
	if lastErr := m.sess.LastError(); lastErr != "" {
		return "\n" + styles.err.Render(lastErr) + "\n"
	}
	if msg := m.sess.LastMessage(); msg != "" {
		return "\n" + styles.ok.Render(msg) + "\n"
	}
	return "\n"
}

func (m *Model) renderDashboard(styles *Palette) string {
	principal := m.sess.Principal()
	title := styles.title.Render(fmt.Sprintf("stacks — welcome, %s", principal.DisplayName()))

	var body string
	switch {
	case m.err != nil:
		body = styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	case m.stats == nil:
		body = fmt.Sprintf("%s loading stats...", m.spinner.View())
	default:
		body = fmt.Sprintf(
			"Books: %d\nAuthors: %d\nMembers: %d\nActive loans: %d\nOverdue: %s",
			m.stats.TotalBooks,
			m.stats.TotalAuthors,
			m.stats.TotalUsers,
			m.stats.ActiveLoans,
			styles.warn.Render(fmt.Sprintf("%d", m.stats.OverdueLoans)),
		)
	}

	if msg := m.sess.LastMessage(); msg != "" {
		body = styles.ok.Render(msg) + "\n\n" + body
	}

	helpKeys := []key.Binding{m.keys.books, m.keys.loans, m.keys.theme, m.keys.logout, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, body, helpView)
}

func (m *Model) renderBooks() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.theme, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.bookList.View(), helpView)
}

func (m *Model) renderLoans() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.theme, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.loanList.View(), helpView)
}
