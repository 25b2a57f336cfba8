package cli

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/sccse-chat/internal/apperr"
	"github.com/raphaelgruber/sccse-chat/internal/auth"
)

const (
	registerName = iota
	registerEmail
	registerPassword
)

// registerResultMsg carries the outcome of a registration attempt.
type registerResultMsg struct {
	message string
	err     error
}

// registerView is the create-account form. A successful registration stays
// on this view; the user logs in separately.
type registerView struct {
	flow    *auth.Flow
	form    form
	message string
	ok      bool
	pending bool
}

func newRegisterView(flow *auth.Flow) registerView {
	return registerView{
		flow: flow,
		form: newForm(
			formField{label: "Full Name", charLimit: nameCharLimit},
			formField{label: "Email", charLimit: emailCharLimit},
			formField{label: "Password", secret: true, charLimit: passwordCharLimit},
		),
	}
}

func (v *registerView) init() tea.Cmd {
	return v.form.focusCmd()
}

func (v registerView) update(msg tea.Msg) (registerView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab", "down":
			return v, v.form.move(1)
		case "shift+tab", "up":
			return v, v.form.move(-1)
		case "ctrl+l":
			return v, navigateTo(routeLogin)
		case "enter":
			return v.submit()
		}

	case registerResultMsg:
		v.pending = false
		if msg.err != nil {
			v.ok = false
			v.message = "❌ " + apperr.Message(msg.err, auth.RegisterFailedMessage)
			return v, nil
		}
		v.ok = true
		v.message = "✅ " + msg.message
		return v, nil
	}

	var cmd tea.Cmd
	v.form, cmd, _ = v.form.update(msg)
	return v, cmd
}

func (v registerView) submit() (registerView, tea.Cmd) {
	if v.pending {
		return v, nil
	}
	f := auth.RegisterForm{
		Name:     v.form.value(registerName),
		Email:    v.form.value(registerEmail),
		Password: v.form.value(registerPassword),
	}
	v.message = ""
	v.pending = true
	focus := v.form.reset()

	flow := v.flow
	register := func() tea.Msg {
		msg, err := flow.Register(context.Background(), f)
		return registerResultMsg{message: msg, err: err}
	}
	return v, tea.Batch(focus, register)
}

func (v registerView) view(t Theme) string {
	var b strings.Builder
	b.WriteString(t.titleStyle().Render("Create Account"))
	b.WriteString("\n")
	b.WriteString(v.form.view(t))

	switch {
	case v.pending:
		b.WriteString(t.statusStyle().Render("Creating account..."))
		b.WriteString("\n")
	case v.message != "" && v.ok:
		b.WriteString(t.successStyle().Render(v.message))
		b.WriteString("\n")
	case v.message != "":
		b.WriteString(t.errorStyle().Render(v.message))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(t.hintStyle().Render("Already registered? ctrl+l to log in · tab to switch fields · esc to quit"))
	b.WriteString("\n")
	return b.String()
}
