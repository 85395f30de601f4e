package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMarkdownRendererResolvesStyleUpFront(t *testing.T) {
	r := NewMarkdownRenderer("")
	assert.Contains(t, []string{"dark", "light"}, r.style)

	r = NewMarkdownRenderer("notty")
	assert.Equal(t, "notty", r.style)
}

func TestMarkdownRendererCachesPerWidth(t *testing.T) {
	r := NewMarkdownRenderer("notty")

	out := r.Render("# Title\n\nsome **bold** text", 40)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "bold")

	_ = r.Render("again", 40)
	_ = r.Render("again", 60)
	assert.Len(t, r.renderers, 2)
}

func TestPlainRendererWraps(t *testing.T) {
	out := PlainRenderer{}.Render("one two three four", 9)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), 9)
	}
	assert.Equal(t, "abc", PlainRenderer{}.Render("abc", 0))
}
