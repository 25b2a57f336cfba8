package cli

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const defaultWrapWidth = 80

// markdownRenderer renders bot replies. It falls back to the raw text if
// the renderer is disabled or fails.
type markdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// newMarkdownRenderer creates a renderer for style ("auto", "dark", "light",
// "notty" or "off"). "auto" is resolved here, once, so the terminal is never
// queried while the UI is running.
func newMarkdownRenderer(style string, width int) *markdownRenderer {
	if style == "auto" || style == "" {
		style = "light"
		if lipgloss.HasDarkBackground() {
			style = "dark"
		}
	}
	if width <= 0 {
		width = defaultWrapWidth
	}
	m := &markdownRenderer{style: style, width: width}
	m.build()
	return m
}

func (m *markdownRenderer) build() {
	m.renderer = nil
	if m.style == "off" {
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(m.width),
	)
	if err != nil {
		return
	}
	m.renderer = r
}

// resize rebuilds the renderer for a new wrap width.
func (m *markdownRenderer) resize(width int) {
	if m == nil || width <= 0 || width == m.width {
		return
	}
	m.width = width
	m.build()
}

// render returns text rendered as markdown, or text unchanged on failure.
func (m *markdownRenderer) render(text string) string {
	if m == nil || m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
