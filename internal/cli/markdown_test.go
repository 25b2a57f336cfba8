package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownOffReturnsRawText(t *testing.T) {
	md := newMarkdownRenderer("off", 40)
	assert.Equal(t, "**hi**", md.render("**hi**"))
}

func TestMarkdownNilRenderer(t *testing.T) {
	var md *markdownRenderer
	assert.Equal(t, "plain", md.render("plain"))
	md.resize(100)
}

func TestMarkdownRendersText(t *testing.T) {
	md := newMarkdownRenderer("dark", 40)
	out := md.render("**hello** world")
	assert.Contains(t, out, "hello")
	assert.NotContains(t, out, "**")
}

func TestMarkdownResize(t *testing.T) {
	md := newMarkdownRenderer("notty", 40)
	md.resize(60)
	assert.Equal(t, 60, md.width)
	md.resize(0)
	assert.Equal(t, 60, md.width)
}
