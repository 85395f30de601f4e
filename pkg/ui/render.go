package ui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"github.com/rs/zerolog/log"
)

// AnswerRenderer turns answer text into what is shown for a given width.
type AnswerRenderer interface {
	Render(text string, width int) string
}

type PlainRenderer struct{}

func (PlainRenderer) Render(text string, width int) string {
	return wrapWords(text, width)
}

// MarkdownRenderer renders answers with glamour. Renderers are cached per width.
type MarkdownRenderer struct {
	style     string
	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdownRenderer uses a glamour standard style ("dark", "light", "notty").
// When style is empty the terminal background is queried here, once, so it
// must be called before a program takes over the terminal.
func NewMarkdownRenderer(style string) *MarkdownRenderer {
	if style == "" {
		style = DetectMarkdownStyle()
	}
	return &MarkdownRenderer{
		style:     style,
		renderers: map[int]*glamour.TermRenderer{},
	}
}

func (m *MarkdownRenderer) Render(text string, width int) string {
	r, err := m.renderer(width)
	if err != nil {
		log.Warn().Err(err).Msg("could not create markdown renderer")
		return wrapWords(text, width)
	}

	out, err := r.Render(text)
	if err != nil {
		log.Warn().Err(err).Msg("could not render markdown")
		return wrapWords(text, width)
	}

	return strings.Trim(out, "\n")
}

func (m *MarkdownRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.renderers[width]; ok {
		return r, nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	m.renderers[width] = r
	return r, nil
}

// DetectMarkdownStyle picks the dark or light glamour style from the terminal background.
func DetectMarkdownStyle() string {
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// wrapWords wraps on word boundaries and hard-wraps words longer than width.
func wrapWords(text string, width int) string {
	if width <= 0 {
		return text
	}
	return wrap.String(wordwrap.String(text, width), width)
}
