// Package tui is the terminal front end for Kaleido. It follows The Elm
// Architecture via bubbletea:
//
// 1. Model: the application state
// 2. Update: a function that updates state based on messages
// 3. View: a function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kaleido/internal/auth"
	"kaleido/internal/client"
	"kaleido/internal/config"
	"kaleido/internal/logbook"
)

// appState represents which "screen" we're on
type appState int

const (
	stateLogin     appState = iota // Token entry
	stateHome                      // Thread history + new search
	stateThread                    // Active search thread
	stateBookmarks                 // Saved products
)

// App is the main application model. In bubbletea, this holds ALL state.
type App struct {
	state   appState
	config  *config.Config
	client  *client.Client
	tokens  *auth.Store
	logbook *logbook.Logbook
	user    *client.User

	// Window size (we get this from bubbletea)
	width  int
	height int

	statusMsg string

	// Login screen
	tokenInput textinput.Model
	loggingIn  bool

	// Home screen
	threadMenu     list.Model
	searchInput    textinput.Model
	searchFocused  bool
	loadingThreads bool

	// Sub views
	threadView    *threadView
	bookmarksView *bookmarksView

	spin spinner.Model
}

type loginMsg struct {
	user *client.User
	err  error
}

type threadsMsg struct {
	threads []client.Thread
	err     error
}

type threadTitleMsg struct {
	tid   int
	title string
}

type threadDeletedMsg struct {
	tid int
	err error
}

// threadItem implements list.Item for the thread history.
type threadItem struct {
	thread client.Thread
	title  string
}

func (i threadItem) Title() string {
	if i.title != "" {
		return i.title
	}
	return "Untitled Search"
}

func (i threadItem) Description() string {
	if i.thread.UpdatedAt.IsZero() {
		return fmt.Sprintf("Thread #%d", i.thread.ThreadID)
	}
	return fmt.Sprintf("Thread #%d · updated %s", i.thread.ThreadID, i.thread.UpdatedAt.Format("2006-01-02 15:04"))
}

func (i threadItem) FilterValue() string { return i.title }

// NewApp creates the application model.
func NewApp(cfg *config.Config, api *client.Client, tokens *auth.Store, lb *logbook.Logbook) *App {
	tokenInput := textinput.New()
	tokenInput.Placeholder = "Paste your access token"
	tokenInput.EchoMode = textinput.EchoPassword
	tokenInput.CharLimit = 0
	tokenInput.Focus()

	searchInput := textinput.New()
	searchInput.Placeholder = "Search for products..."

	threadMenu := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	threadMenu.Title = "⬡ KALEIDO · Search History"
	threadMenu.SetShowStatusBar(false)
	threadMenu.SetFilteringEnabled(false)

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	app := &App{
		state:       stateLogin,
		config:      cfg,
		client:      api,
		tokens:      tokens,
		logbook:     lb,
		tokenInput:  tokenInput,
		searchInput: searchInput,
		threadMenu:  threadMenu,
		spin:        spin,
	}
	return app
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spin.Tick, textinput.Blink}
	if a.tokens.Token() != "" {
		// A token is on disk; see whether it still works.
		a.loggingIn = true
		cmds = append(cmds, a.fetchMe())
	}
	return tea.Batch(cmds...)
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.threadMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-12))
		if a.threadView != nil {
			a.threadView.setSize(msg.Width, msg.Height)
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case loginMsg:
		return a.handleLogin(msg)

	case threadsMsg:
		a.loadingThreads = false
		if msg.err != nil {
			if cmd, routed := a.routeAuthFailure(msg.err); routed {
				return a, cmd
			}
			a.statusMsg = fmt.Sprintf("Could not load threads: %v", msg.err)
			return a, nil
		}
		return a, a.installThreads(msg.threads)

	case threadTitleMsg:
		a.applyThreadTitle(msg)
		return a, nil

	case threadDeletedMsg:
		if msg.err != nil {
			a.statusMsg = fmt.Sprintf("Delete failed: %v", msg.err)
			return a, nil
		}
		a.logInfo("Thread %d deleted", msg.tid)
		return a, a.fetchThreads()

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a.routeToScreen(msg)
}

// handleKey dispatches key presses by screen.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	switch a.state {
	case stateLogin:
		return a.updateLogin(msg)
	case stateHome:
		return a.updateHome(msg)
	case stateThread:
		if a.threadView == nil {
			a.state = stateHome
			return a, nil
		}
		if msg.String() == "esc" {
			return a.closeThread()
		}
		return a, a.threadView.Update(msg)
	case stateBookmarks:
		if a.bookmarksView == nil {
			a.state = stateHome
			return a, nil
		}
		if msg.String() == "esc" {
			a.bookmarksView = nil
			a.state = stateHome
			return a, nil
		}
		return a, a.bookmarksView.Update(msg)
	}
	return a, nil
}

// routeToScreen forwards non-key messages to the active sub view. Messages
// for a closed view are dropped on the floor, matching the "unmounted view
// discards its responses" behavior.
func (a *App) routeToScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case evaluationMsg, recommendationsMsg, summariesMsg, bookmarkToggledMsg:
		if cmd, routed := a.routeAuthFailure(msgError(msg)); routed {
			return a, cmd
		}
		if a.threadView != nil {
			return a, a.threadView.Update(msg)
		}
		return a, nil
	case bookmarksLoadedMsg, bookmarkRemovedMsg:
		if cmd, routed := a.routeAuthFailure(msgError(msg)); routed {
			return a, cmd
		}
		if a.bookmarksView != nil {
			return a, a.bookmarksView.Update(msg)
		}
		return a, nil
	}

	var cmds []tea.Cmd
	switch a.state {
	case stateLogin:
		var cmd tea.Cmd
		a.tokenInput, cmd = a.tokenInput.Update(msg)
		cmds = append(cmds, cmd)
	case stateHome:
		var cmd tea.Cmd
		a.threadMenu, cmd = a.threadMenu.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

// --- Login screen ---

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.loggingIn {
		return a, nil
	}
	if msg.String() == "enter" {
		token := strings.TrimSpace(a.tokenInput.Value())
		if token == "" {
			a.statusMsg = "Token must not be empty"
			return a, nil
		}
		if err := a.tokens.Save(token); err != nil {
			a.statusMsg = fmt.Sprintf("Could not store token: %v", err)
			return a, nil
		}
		a.loggingIn = true
		a.statusMsg = "Signing in..."
		return a, a.fetchMe()
	}
	var cmd tea.Cmd
	a.tokenInput, cmd = a.tokenInput.Update(msg)
	return a, cmd
}

func (a *App) fetchMe() tea.Cmd {
	return func() tea.Msg {
		user, err := a.client.Users.Me(context.Background())
		return loginMsg{user: user, err: err}
	}
}

func (a *App) handleLogin(msg loginMsg) (tea.Model, tea.Cmd) {
	a.loggingIn = false
	if msg.err != nil {
		a.statusMsg = "Sign in failed, check your token"
		a.logError("Sign in failed: %v", msg.err)
		a.state = stateLogin
		a.tokenInput.Focus()
		return a, nil
	}
	a.user = msg.user
	a.state = stateHome
	a.statusMsg = ""
	name := msg.user.Username
	if name == "" {
		name = msg.user.SubID
	}
	a.logInfo("Signed in as %s", name)
	a.loadingThreads = true
	return a, a.fetchThreads()
}

// routeAuthFailure sends the user back to the login screen when the backend
// reports an expired token. The active session state is discarded, never
// half-updated.
func (a *App) routeAuthFailure(err error) (tea.Cmd, bool) {
	if !errors.Is(err, client.ErrTokenExpired) {
		return nil, false
	}
	a.logInfo("Access token expired, returning to login")
	_ = a.tokens.Clear()
	a.threadView = nil
	a.bookmarksView = nil
	a.state = stateLogin
	a.tokenInput.SetValue("")
	a.tokenInput.Focus()
	a.statusMsg = "Session expired, sign in again"
	return textinput.Blink, true
}

// --- Home screen ---

func (a *App) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.searchFocused {
		switch msg.String() {
		case "esc":
			a.searchFocused = false
			a.searchInput.Blur()
			return a, nil
		case "enter":
			query := strings.TrimSpace(a.searchInput.Value())
			a.searchFocused = false
			a.searchInput.Blur()
			a.searchInput.SetValue("")
			return a.openNewThread(query)
		}
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "n", "/":
		a.searchFocused = true
		a.searchInput.Focus()
		a.statusMsg = "Enter → start searching    Esc → cancel"
		return a, textinput.Blink
	case "b":
		return a.openBookmarks()
	case "r":
		a.loadingThreads = true
		return a, a.fetchThreads()
	case "d":
		if item, ok := a.threadMenu.SelectedItem().(threadItem); ok {
			return a, a.deleteThread(item.thread.ThreadID)
		}
	case "enter":
		if item, ok := a.threadMenu.SelectedItem().(threadItem); ok {
			return a.openExistingThread(item.thread.ThreadID)
		}
	}
	var cmd tea.Cmd
	a.threadMenu, cmd = a.threadMenu.Update(msg)
	return a, cmd
}

func (a *App) fetchThreads() tea.Cmd {
	return func() tea.Msg {
		threads, err := a.client.Threads.List(context.Background())
		return threadsMsg{threads: threads, err: err}
	}
}

func (a *App) deleteThread(tid int) tea.Cmd {
	return func() tea.Msg {
		err := a.client.Threads.Delete(context.Background(), tid)
		return threadDeletedMsg{tid: tid, err: err}
	}
}

// installThreads fills the history list and kicks off one title fetch per
// thread (titles come from each thread's cleaned query).
func (a *App) installThreads(threads []client.Thread) tea.Cmd {
	items := make([]list.Item, len(threads))
	cmds := make([]tea.Cmd, 0, len(threads))
	for i, thread := range threads {
		items[i] = threadItem{thread: thread}
		tid := thread.ThreadID
		cmds = append(cmds, func() tea.Msg {
			eval, err := a.client.Threads.Evaluation(context.Background(), tid)
			if err != nil || eval.CleanedQuery == "" {
				return threadTitleMsg{tid: tid}
			}
			return threadTitleMsg{tid: tid, title: titleCase(eval.CleanedQuery)}
		})
	}
	a.threadMenu.SetItems(items)
	return tea.Batch(cmds...)
}

func (a *App) applyThreadTitle(msg threadTitleMsg) {
	if msg.title == "" {
		return
	}
	for i, item := range a.threadMenu.Items() {
		entry, ok := item.(threadItem)
		if !ok || entry.thread.ThreadID != msg.tid {
			continue
		}
		entry.title = msg.title
		a.threadMenu.SetItem(i, entry)
		return
	}
}

// --- Screen transitions ---

func (a *App) openNewThread(query string) (tea.Model, tea.Cmd) {
	a.logInfo("New search: %q", query)
	view := newThreadView(a)
	a.threadView = view
	a.state = stateThread
	view.setSize(a.width, a.height)
	return a, view.InitNew(query)
}

func (a *App) openExistingThread(tid int) (tea.Model, tea.Cmd) {
	a.logInfo("Resuming thread %d", tid)
	view := newThreadView(a)
	a.threadView = view
	a.state = stateThread
	view.setSize(a.width, a.height)
	return a, view.InitResume(tid)
}

func (a *App) openBookmarks() (tea.Model, tea.Cmd) {
	view := newBookmarksView(a)
	a.bookmarksView = view
	a.state = stateBookmarks
	return a, view.Init()
}

func (a *App) closeThread() (tea.Model, tea.Cmd) {
	// Dropping the view discards any in-flight responses; drafts die with it.
	a.threadView = nil
	a.state = stateHome
	a.statusMsg = ""
	a.loadingThreads = true
	return a, a.fetchThreads()
}

// --- Rendering ---

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")).
			MarginBottom(1)
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// View renders the current state to a string.
func (a *App) View() string {
	var content string
	switch a.state {
	case stateLogin:
		content = a.renderLogin()
	case stateHome:
		content = a.renderHome()
	case stateThread:
		if a.threadView != nil {
			content = a.threadView.View()
		} else {
			content = "Loading thread..."
		}
	case stateBookmarks:
		if a.bookmarksView != nil {
			content = a.bookmarksView.View()
		} else {
			content = "Loading bookmarks..."
		}
	}

	sections := []string{content}
	if panel := a.renderLogPanel(); panel != "" {
		sections = append(sections, panel)
	}
	if a.statusMsg != "" {
		sections = append(sections, hintStyle.Render(a.statusMsg))
	}
	return strings.Join(sections, "\n")
}

func (a *App) renderLogin() string {
	header := headerStyle.Render("⬡ KALEIDO")
	lines := []string{
		header,
		"Sign in with the token from your browser session.",
		"",
		a.tokenInput.View(),
	}
	if a.loggingIn {
		lines = append(lines, "", a.spin.View()+" Signing in...")
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) renderHome() string {
	header := headerStyle.Render("⬡ KALEIDO")
	var body string
	switch {
	case a.searchFocused:
		body = "What are you looking for?\n\n" + a.searchInput.View()
	case a.loadingThreads:
		body = a.spin.View() + " Loading your searches..."
	default:
		body = a.threadMenu.View()
	}
	hint := hintStyle.Render("n → new search    Enter → resume    d → delete    b → bookmarks    q → quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, boxStyle.Render(body), hint)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(4)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", fileName))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return boxStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}

func titleCase(sentence string) string {
	words := strings.Fields(strings.TrimSpace(sentence))
	for i, word := range words {
		lower := strings.ToLower(word)
		words[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(words, " ")
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
