package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/sccse-chat/internal/chat"
	"github.com/raphaelgruber/sccse-chat/internal/metrics"
	"github.com/raphaelgruber/sccse-chat/internal/session"
)

// replyMsg delivers the outcome of one send cycle back to the UI goroutine.
type replyMsg struct {
	dispatcher *chat.Dispatcher
	outcome    chat.Outcome
}

// chatView shows the conversation and the message input.
type chatView struct {
	dispatcher *chat.Dispatcher
	metrics    *metrics.Collector
	session    session.Session
	input      textinput.Model
	spinner    spinner.Model
	notice     string
}

func newChatView(deps appDeps, s session.Session) chatView {
	conv := chat.NewConversation()
	conv.Seed(s)

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type your message..."

	return chatView{
		dispatcher: chat.NewDispatcher(conv, deps.sessions, deps.replier,
			chat.WithSerializedSends(deps.serializeSends),
			chat.WithLogger(deps.logger),
			chat.WithMetrics(deps.metrics),
		),
		metrics: deps.metrics,
		session: s,
		input:   ti,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (v *chatView) init() tea.Cmd {
	return v.input.Focus()
}

func (v chatView) update(msg tea.Msg) (chatView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+o":
			return v, func() tea.Msg { return logoutMsg{} }
		case "enter":
			return v.send()
		}
		v.notice = ""

	case spinner.TickMsg:
		if v.dispatcher.InFlight() == 0 {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// send begins a cycle for the current input. The user entry is already in
// the conversation when this returns; the reply arrives later as a replyMsg.
func (v chatView) send() (chatView, tea.Cmd) {
	wasIdle := v.dispatcher.InFlight() == 0

	cycle, err := v.dispatcher.Begin(v.input.Value())
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		return v, nil
	case errors.Is(err, chat.ErrBusy):
		v.notice = "Please wait for the current reply."
		return v, nil
	case err != nil:
		v.notice = err.Error()
		return v, nil
	}

	v.notice = ""
	v.input.Reset()

	d := v.dispatcher
	exchange := func() tea.Msg {
		return replyMsg{dispatcher: d, outcome: d.Exchange(context.Background(), cycle)}
	}
	if wasIdle {
		return v, tea.Batch(exchange, v.spinner.Tick)
	}
	return v, exchange
}

func (v chatView) view(t Theme, width int, md *markdownRenderer) string {
	var b strings.Builder
	title := "Chat"
	if v.session.DisplayName != "" {
		title = "Chat · " + v.session.DisplayName
	}
	b.WriteString(t.titleStyle().Render(title))
	b.WriteString("\n")

	for _, e := range v.dispatcher.Conversation().Entries() {
		switch e.Sender {
		case chat.SenderUser:
			bubble := t.userBubbleStyle().Render(e.Text)
			if width > 0 {
				bubble = lipgloss.NewStyle().Width(width).Align(lipgloss.Right).Render(bubble)
			}
			b.WriteString(bubble)
		default:
			b.WriteString(t.botBubbleStyle().Render(md.render(e.Text)))
		}
		b.WriteString("\n")
	}

	if v.dispatcher.InFlight() > 0 {
		b.WriteString(t.statusStyle().Render(v.spinner.View() + " Bot is typing..."))
		b.WriteString("\n")
	}
	if v.notice != "" {
		b.WriteString(t.errorStyle().Render(v.notice))
		b.WriteString("\n")
	}

	if stats := v.metrics.Snapshot(metrics.OpChat); stats != nil {
		b.WriteString(t.hintStyle().Render(formatStats(stats)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.input.View())
	b.WriteString("\n\n")
	b.WriteString(t.hintStyle().Render("enter to send · ctrl+o to log out · esc to quit"))
	b.WriteString("\n")
	return b.String()
}

func formatStats(s *metrics.OperationSnapshot) string {
	replies := "replies"
	if s.Count == 1 {
		replies = "reply"
	}
	out := fmt.Sprintf("%d %s · avg %.0fms", s.Count, replies, s.AvgTimeMs)
	if s.Failures > 0 {
		out += fmt.Sprintf(" · %d failed", s.Failures)
	}
	return out
}
