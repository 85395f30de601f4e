package clipboard

import (
	"io"
	"sync"

	"github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"github.com/go-go-golems/asker/pkg/conversation"
	"github.com/go-go-golems/asker/pkg/settings"
	"github.com/pkg/errors"
)

// System writes to the OS clipboard (pbcopy, xclip/xsel, wl-copy, or the Windows API).
type System struct{}

func (System) WriteText(text string) error {
	if clipboard.Unsupported {
		return errors.New("no system clipboard available")
	}
	return clipboard.WriteAll(text)
}

// OSC52 asks the terminal to set its clipboard with an OSC 52 escape sequence.
// This works over SSH and inside tmux, where the system clipboard is out of reach.
type OSC52 struct {
	mu  sync.Mutex
	out io.Writer
}

func NewOSC52(out io.Writer) *OSC52 {
	return &OSC52{out: out}
}

func (o *OSC52) WriteText(text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	_, err := osc52.New(text).WriteTo(o.out)
	return errors.Wrap(err, "could not write osc52 sequence")
}

// Memory keeps every write. It backs the "none" setting and tests.
type Memory struct {
	mu     sync.Mutex
	writes []string
}

func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, text)
	return nil
}

func (m *Memory) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := make([]string, len(m.writes))
	copy(ret, m.writes)
	return ret
}

var (
	_ conversation.ClipboardSink = System{}
	_ conversation.ClipboardSink = (*OSC52)(nil)
	_ conversation.ClipboardSink = (*Memory)(nil)
)

// NewSink returns the sink named by kind. terminal is where OSC 52 sequences go.
func NewSink(kind string, terminal io.Writer) (conversation.ClipboardSink, error) {
	switch kind {
	case settings.ClipboardSystem:
		return System{}, nil
	case settings.ClipboardOSC52:
		return NewOSC52(terminal), nil
	case settings.ClipboardNone:
		return &Memory{}, nil
	}
	return nil, errors.Errorf("unknown clipboard %q", kind)
}
