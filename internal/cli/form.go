package cli

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// Input limits for the auth forms. An email address is at most 254 characters.
const (
	nameCharLimit     = 100
	emailCharLimit    = 254
	passwordCharLimit = 128
)

// formField describes one text input of a form.
type formField struct {
	label     string
	secret    bool
	charLimit int
}

// form is a focusable stack of text inputs. Its values are the transient
// draft owned by the view; the view resets it on submit.
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(fields ...formField) form {
	f := form{
		labels: make([]string, len(fields)),
		inputs: make([]textinput.Model, len(fields)),
	}
	for i, field := range fields {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = field.label
		if field.charLimit > 0 {
			ti.CharLimit = field.charLimit
		}
		if field.secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		f.labels[i] = field.label
		f.inputs[i] = ti
	}
	return f
}

// focusCmd focuses the current input and returns its cursor command.
func (f *form) focusCmd() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.focus {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (f *form) move(delta int) tea.Cmd {
	n := len(f.inputs)
	f.focus = ((f.focus+delta)%n + n) % n
	return f.focusCmd()
}

// value returns the current text of input i.
func (f form) value(i int) string {
	return f.inputs[i].Value()
}

// setValue replaces the text of input i.
func (f *form) setValue(i int, v string) {
	f.inputs[i].SetValue(v)
}

// reset clears every input and moves focus back to the first one.
func (f *form) reset() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	f.focus = 0
	return f.focusCmd()
}

// update forwards msg to the focused input and reports whether its value changed.
func (f form) update(msg tea.Msg) (form, tea.Cmd, bool) {
	before := f.inputs[f.focus].Value()
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, f.inputs[f.focus].Value() != before
}

func (f form) view(t Theme) string {
	var b strings.Builder
	for i, in := range f.inputs {
		label := f.labels[i]
		if i == f.focus {
			b.WriteString(t.statusStyle().Render(label))
		} else {
			b.WriteString(label)
		}
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	return b.String()
}
