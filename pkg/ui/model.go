package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/asker/pkg/conversation"
	"github.com/go-go-golems/asker/pkg/tokens"
	"github.com/pkg/errors"
)

const uploadNotice = "File upload is not supported."

// submitFinishedMsg is sent when a Submit issued by the model returns.
// err is only set when the controller rejected the submission.
type submitFinishedMsg struct {
	err error
}

// model renders the controller state and forwards key presses to it as intents.
// It never changes conversation state itself.
type model struct {
	controller *conversation.Controller
	forwarder  *EventForwarder
	ctx        context.Context

	viewport viewport.Model
	textArea textarea.Model
	help     help.Model
	keyMap   KeyMap
	style    *Style
	renderer AnswerRenderer
	counter  *tokens.Counter

	// last snapshot read from the controller
	state conversation.State
	// set between issuing a submit and receiving submitFinishedMsg
	submitting bool
	notice     string

	width  int
	height int
}

type ModelOption func(*model)

func WithEventForwarder(f *EventForwarder) ModelOption {
	return func(m *model) {
		m.forwarder = f
	}
}

func WithRenderer(r AnswerRenderer) ModelOption {
	return func(m *model) {
		m.renderer = r
	}
}

func WithTokenCounter(c *tokens.Counter) ModelOption {
	return func(m *model) {
		m.counter = c
	}
}

// WithContext sets the context passed to Submit.
func WithContext(ctx context.Context) ModelOption {
	return func(m *model) {
		m.ctx = ctx
	}
}

func InitialModel(controller *conversation.Controller, options ...ModelOption) model {
	ret := model{
		controller: controller,
		ctx:        context.Background(),
		viewport:   viewport.New(0, 0),
		help:       help.New(),
		keyMap:     DefaultKeyMap,
		style:      DefaultStyles(),
		renderer:   PlainRenderer{},
	}
	for _, o := range options {
		o(&ret)
	}

	ret.textArea = textarea.New()
	ret.textArea.Placeholder = "Type your question..."
	ret.textArea.ShowLineNumbers = false
	ret.textArea.SetHeight(3)
	// enter submits, newlines go through KeyMap.InsertNewline
	ret.textArea.KeyMap.InsertNewline.SetEnabled(false)
	ret.textArea.Focus()

	ret.state = controller.Snapshot()
	ret.textArea.SetValue(ret.state.Draft)
	ret.viewport.SetContent(ret.messageView())
	ret.viewport.GotoBottom()

	ret.updateKeyBindings()

	return ret
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.forwarder != nil {
		cmds = append(cmds, m.forwarder.Wait())
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keyMap.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.recomputeSize()

		case key.Matches(msg, m.keyMap.SubmitMessage):
			cmd = m.submit()
			return m, cmd

		case key.Matches(msg, m.keyMap.InsertNewline):
			m.textArea.InsertString("\n")
			m.controller.SetDraft(m.textArea.Value())

		case key.Matches(msg, m.keyMap.RetryLast):
			m.controller.RetryLast()
			m.notice = ""
			m.refresh()
			m.textArea.SetValue(m.state.Draft)

		case key.Matches(msg, m.keyMap.CopyLast):
			if err := m.controller.CopyLast(); err != nil {
				m.notice = err.Error()
			} else {
				m.notice = "Copied last answer."
			}

		case key.Matches(msg, m.keyMap.UploadFile):
			m.notice = uploadNotice

		case key.Matches(msg, m.keyMap.ScrollUp), key.Matches(msg, m.keyMap.ScrollDown):
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)

		default:
			if m.inputEnabled() {
				m.textArea, cmd = m.textArea.Update(msg)
				cmds = append(cmds, cmd)
				m.controller.SetDraft(m.textArea.Value())
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recomputeSize()

	case submitFinishedMsg:
		m.submitting = false
		m.notice = ""
		if msg.err != nil {
			m.notice = msg.err.Error()
		}
		m.refresh()
		m.textArea.SetValue(m.state.Draft)
		cmds = append(cmds, m.textArea.Focus())

	case ControllerEventMsg:
		m.refresh()
		if m.forwarder != nil {
			cmds = append(cmds, m.forwarder.Wait())
		}

	default:
		m.textArea, cmd = m.textArea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.refresh()
	m.updateKeyBindings()

	return m, tea.Batch(cmds...)
}

// submit hands the textarea content to the controller. The call blocks on the
// answer service, so it runs as a command.
func (m *model) submit() tea.Cmd {
	prompt := m.textArea.Value()
	m.controller.SetDraft(prompt)
	m.refresh()

	if m.submitting || !m.state.Presentation().SubmitEnabled {
		return nil
	}

	m.submitting = true
	m.notice = ""
	m.textArea.Blur()
	m.updateKeyBindings()

	ctx := m.ctx
	controller := m.controller
	return func() tea.Msg {
		err := controller.Submit(ctx, prompt)
		if errors.Is(err, conversation.ErrEmptyPrompt) {
			err = nil
		}
		return submitFinishedMsg{err: err}
	}
}

func (m *model) inputEnabled() bool {
	return !m.submitting && m.state.Presentation().InputEnabled
}

// refresh re-reads the controller and redraws the transcript when it grew.
func (m *model) refresh() {
	previous := len(m.state.Turns)
	previousStatus := m.state.Status
	m.state = m.controller.Snapshot()

	if len(m.state.Turns) != previous || m.state.Status != previousStatus {
		m.viewport.SetContent(m.messageView())
		m.viewport.GotoBottom()
	}
}

func (m *model) updateKeyBindings() {
	p := m.state.Presentation()

	m.keyMap.SubmitMessage.SetEnabled(!m.submitting && p.InputEnabled)
	m.keyMap.InsertNewline.SetEnabled(m.inputEnabled())
	m.keyMap.RetryLast.SetEnabled(!m.submitting && p.ActionsVisible)
	m.keyMap.CopyLast.SetEnabled(!m.submitting && p.ActionsVisible)
	m.keyMap.UploadFile.SetEnabled(m.inputEnabled())
}

func (m *model) recomputeSize() {
	headerHeight := lipgloss.Height(m.headerView())
	inputHeight := lipgloss.Height(m.inputView())
	statusHeight := lipgloss.Height(m.statusView())
	helpHeight := lipgloss.Height(m.help.View(m.keyMap))

	newHeight := m.height - headerHeight - inputHeight - statusHeight - helpHeight
	if newHeight < 0 {
		newHeight = 0
	}
	m.viewport.Width = m.width
	m.viewport.Height = newHeight
	m.viewport.YPosition = headerHeight + 1

	w, _ := m.style.FocusedInput.GetFrameSize()
	m.textArea.SetWidth(m.width - w)
	m.help.Width = m.width

	m.viewport.SetContent(m.messageView())
	m.viewport.GotoBottom()
}

func (m model) headerView() string {
	return m.style.Header.Render("ASKER")
}

func (m model) messageView() string {
	p := m.state.Presentation()
	if p.EmptyText != "" {
		return m.style.Empty.Render(p.EmptyText)
	}

	bubbleWidth := m.width * 4 / 5
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	var sb strings.Builder
	for _, turn := range m.state.Turns {
		qFrame, _ := m.style.Question.GetFrameSize()
		q := m.style.Question.Render(wrapWords("Q: "+turn.Question, bubbleWidth-qFrame))
		sb.WriteString(q)
		sb.WriteString("\n")

		answerStyle := m.style.Answer
		a := turn.Answer
		aFrame, _ := answerStyle.GetFrameSize()
		if turn.Failed {
			answerStyle = m.style.FailedAnswer
			a = wrapWords(a, bubbleWidth-aFrame)
		} else {
			a = m.renderer.Render(a, bubbleWidth-aFrame)
		}
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Right, answerStyle.Render(a)))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (m model) inputView() string {
	v := m.textArea.View()
	if m.inputEnabled() {
		return m.style.FocusedInput.Render(v)
	}
	return m.style.BlurredInput.Render(v)
}

func (m model) statusView() string {
	p := m.state.Presentation()

	parts := []string{fmt.Sprintf("[%s]", p.SubmitLabel)}
	if m.counter != nil && m.inputEnabled() {
		parts = append(parts, fmt.Sprintf("%d tokens", m.counter.Count(m.textArea.Value())))
	}
	status := m.style.Status.Render(strings.Join(parts, " "))

	if m.notice != "" {
		status += m.style.Notice.Render(m.notice)
	}
	return status
}

func (m model) View() string {
	return m.headerView() + "\n" +
		m.viewport.View() + "\n" +
		m.inputView() + "\n" +
		m.statusView() + "\n" +
		m.help.View(m.keyMap)
}
