package cli

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/sccse-chat/internal/apperr"
	"github.com/raphaelgruber/sccse-chat/internal/auth"
	"github.com/raphaelgruber/sccse-chat/internal/session"
)

const (
	loginEmail = iota
	loginPassword
)

// loginResultMsg carries the outcome of a login attempt.
type loginResultMsg struct {
	session session.Session
	err     error
}

// loginView is the email/password form.
type loginView struct {
	flow    *auth.Flow
	form    form
	message string
	pending bool
}

func newLoginView(flow *auth.Flow) loginView {
	return loginView{
		flow: flow,
		form: newForm(
			formField{label: "Email", charLimit: emailCharLimit},
			formField{label: "Password", secret: true, charLimit: passwordCharLimit},
		),
	}
}

func (v *loginView) init() tea.Cmd {
	return v.form.focusCmd()
}

func (v loginView) update(msg tea.Msg) (loginView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab", "down":
			return v, v.form.move(1)
		case "shift+tab", "up":
			return v, v.form.move(-1)
		case "ctrl+r":
			return v, navigateTo(routeRegister)
		case "enter":
			return v.submit()
		}

	case loginResultMsg:
		v.pending = false
		if msg.err != nil {
			v.message = "❌ " + apperr.Message(msg.err, auth.InvalidCredentialsMessage)
		}
		return v, nil
	}

	var cmd tea.Cmd
	var changed bool
	v.form, cmd, changed = v.form.update(msg)
	if changed {
		v.message = ""
	}
	return v, cmd
}

// submit clears the previous message, discards the draft and starts the login call.
func (v loginView) submit() (loginView, tea.Cmd) {
	if v.pending {
		return v, nil
	}
	f := auth.LoginForm{
		Email:    v.form.value(loginEmail),
		Password: v.form.value(loginPassword),
	}
	v.message = ""
	v.pending = true
	focus := v.form.reset()

	flow := v.flow
	login := func() tea.Msg {
		s, err := flow.Login(context.Background(), f)
		return loginResultMsg{session: s, err: err}
	}
	return v, tea.Batch(focus, login)
}

func (v loginView) view(t Theme) string {
	var b strings.Builder
	b.WriteString(t.titleStyle().Render("Login"))
	b.WriteString("\n")
	b.WriteString(v.form.view(t))

	switch {
	case v.pending:
		b.WriteString(t.statusStyle().Render("Logging in..."))
		b.WriteString("\n")
	case strings.HasPrefix(v.message, "❌"):
		b.WriteString(t.errorStyle().Render(v.message))
		b.WriteString("\n")
	case v.message != "":
		b.WriteString(t.statusStyle().Render(v.message))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(t.hintStyle().Render("Don't have an account? ctrl+r to create one · tab to switch fields · esc to quit"))
	b.WriteString("\n")
	return b.String()
}
