package cli

import (
	"fmt"
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/sccse-chat/internal/auth"
	"github.com/raphaelgruber/sccse-chat/internal/chat"
	"github.com/raphaelgruber/sccse-chat/internal/metrics"
	"github.com/raphaelgruber/sccse-chat/internal/session"
)

// route names a view of the interactive app.
type route int

const (
	routeLogin route = iota
	routeRegister
	routeChat
)

func (r route) String() string {
	switch r {
	case routeLogin:
		return "login"
	case routeRegister:
		return "register"
	case routeChat:
		return "chat"
	default:
		return "unknown"
	}
}

// loginRequiredNotice is shown when the guard turns away an unauthenticated visit to chat.
const loginRequiredNotice = "Please log in to start chatting."

// appDeps are the services shared by every view.
type appDeps struct {
	flow           *auth.Flow
	sessions       session.Store
	replier        chat.Replier
	logger         *slog.Logger
	serializeSends bool
	markdown       *markdownRenderer
	metrics        *metrics.Collector
}

// navigateMsg asks the app to switch views.
type navigateMsg struct {
	to route
}

func navigateTo(r route) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: r} }
}

// logoutMsg asks the app to clear the session and return to login.
type logoutMsg struct{}

// appModel is the root bubbletea model. It owns routing and the chat guard;
// each view owns its own draft state.
type appModel struct {
	deps     appDeps
	theme    Theme
	route    route
	login    loginView
	register registerView
	chat     chatView
	width    int
	quitting bool

	// startCmd is the first view's command, returned once by Init.
	startCmd tea.Cmd
}

// newAppModel creates the app and navigates to start through the guard.
func newAppModel(deps appDeps, start route) appModel {
	m := appModel{deps: deps, theme: defaultTheme}
	m, cmd := m.navigate(start)
	m.startCmd = cmd
	return m
}

// Init returns the command of the view mounted by newAppModel.
func (m appModel) Init() tea.Cmd {
	return m.startCmd
}

// navigate mounts the view for r. Chat requires an authenticated session;
// without one the user is sent to login instead.
func (m appModel) navigate(r route) (appModel, tea.Cmd) {
	if r == routeChat {
		s, err := m.deps.sessions.Get()
		if err != nil {
			m.deps.logger.Warn("failed to read session", "error", err)
		}
		if err != nil || !s.Authenticated() {
			m.deps.logger.Debug("chat guard redirected to login")
			m.route = routeLogin
			m.login = newLoginView(m.deps.flow)
			m.login.message = loginRequiredNotice
			return m, m.login.init()
		}
		m.route = routeChat
		m.chat = newChatView(m.deps, s)
		return m, m.chat.init()
	}

	m.route = r
	switch r {
	case routeRegister:
		m.register = newRegisterView(m.deps.flow)
		return m, m.register.init()
	default:
		m.route = routeLogin
		m.login = newLoginView(m.deps.flow)
		return m, m.login.init()
	}
}

// Update handles messages and returns the updated model.
func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.deps.markdown.resize(msg.Width - 4)

	case navigateMsg:
		return m.navigate(msg.to)

	case logoutMsg:
		if err := m.deps.flow.Logout(); err != nil {
			m.deps.logger.Error("logout failed", "error", err)
		}
		return m.navigate(routeLogin)

	case loginResultMsg:
		// A login that succeeds moves to chat whichever view is showing.
		if msg.err == nil {
			return m.navigate(routeChat)
		}
		var cmd tea.Cmd
		m.login, cmd = m.login.update(msg)
		return m, cmd

	case replyMsg:
		// Replies finish on the dispatcher that started them, even if that
		// chat view has since been left.
		msg.dispatcher.Finish(msg.outcome)
		return m, nil
	}

	var cmd tea.Cmd
	switch m.route {
	case routeLogin:
		m.login, cmd = m.login.update(msg)
	case routeRegister:
		m.register, cmd = m.register.update(msg)
	case routeChat:
		m.chat, cmd = m.chat.update(msg)
	}
	return m, cmd
}

// View renders the current route.
func (m appModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m appModel) renderContent() string {
	if m.quitting {
		return m.theme.hintStyle().Render("Bye!") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.theme.headerStyle().Render("SCCSE Chatbot"))
	b.WriteString("\n\n")

	switch m.route {
	case routeLogin:
		b.WriteString(m.login.view(m.theme))
	case routeRegister:
		b.WriteString(m.register.view(m.theme))
	case routeChat:
		b.WriteString(m.chat.view(m.theme, m.width, m.deps.markdown))
	}
	return b.String()
}

// runApp runs the interactive app starting at start.
func runApp(deps appDeps, start route) error {
	p := tea.NewProgram(newAppModel(deps, start))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}
