package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-go-golems/asker/pkg/events"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// AnswerService is the remote endpoint that turns a prompt into an answer.
// Each call is stateless: the prompt is the whole payload.
type AnswerService interface {
	Answer(ctx context.Context, prompt string) (string, error)
}

// AnswerFunc adapts a plain function to AnswerService.
type AnswerFunc func(ctx context.Context, prompt string) (string, error)

func (f AnswerFunc) Answer(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ClipboardSink receives the text of CopyLast.
type ClipboardSink interface {
	WriteText(text string) error
}

// Controller owns the conversation, the request status and the draft input.
//
// Reads may happen from any goroutine. Submit blocks for the duration of the
// service call without holding the lock, and rejects reentrant calls with
// ErrRequestPending, so at most one request is ever outstanding.
type Controller struct {
	mu           sync.RWMutex
	conversation *Conversation
	status       RequestStatus
	draft        string

	service   AnswerService
	clipboard ClipboardSink
	publisher *events.PublisherManager
	sessionID uuid.UUID
}

type ControllerOption func(*Controller)

func WithClipboard(sink ClipboardSink) ControllerOption {
	return func(c *Controller) {
		c.clipboard = sink
	}
}

func WithPublisher(publisher *events.PublisherManager) ControllerOption {
	return func(c *Controller) {
		c.publisher = publisher
	}
}

func WithSessionID(id uuid.UUID) ControllerOption {
	return func(c *Controller) {
		c.sessionID = id
	}
}

func NewController(service AnswerService, options ...ControllerOption) *Controller {
	ret := &Controller{
		conversation: NewConversation(),
		status:       StatusIdle,
		service:      service,
		sessionID:    uuid.Nil,
	}
	for _, option := range options {
		option(ret)
	}
	if ret.sessionID == uuid.Nil {
		ret.sessionID = uuid.New()
	}

	return ret
}

func (c *Controller) SessionID() uuid.UUID {
	return c.sessionID
}

// Submit sends prompt to the answer service and records the outcome as a new Turn.
//
// It returns ErrEmptyPrompt or ErrRequestPending when the submission is
// rejected, leaving all state untouched. Service failures are not returned:
// they are appended to the conversation as FailureAnswer and the status
// becomes StatusFailed. In every accepted case the status is terminal again
// by the time Submit returns.
func (c *Controller) Submit(ctx context.Context, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}

	c.mu.Lock()
	if !c.status.AcceptsSubmit() {
		c.mu.Unlock()
		log.Debug().Str("session", c.sessionID.String()).Msg("rejecting submit while a request is pending")
		return ErrRequestPending
	}
	from := c.status
	c.status = StatusPending
	c.mu.Unlock()

	c.publish(events.NewStatusChangedEvent(c.metadata(), from.String(), StatusPending.String()))

	log.Debug().
		Str("session", c.sessionID.String()).
		Int("prompt_length", len(prompt)).
		Msg("submitting prompt")

	answer, err := c.callService(ctx, prompt)

	turn := Turn{Question: prompt, Answer: answer}
	to := StatusSucceeded
	if err != nil {
		err = &AnswerServiceFailure{Prompt: prompt, Err: err}
		log.Warn().Err(err).Str("session", c.sessionID.String()).Msg("answer service failed")
		turn = Turn{Question: prompt, Answer: FailureAnswer, Failed: true}
		to = StatusFailed
	}

	c.mu.Lock()
	c.conversation.Append(turn)
	index := c.conversation.Len() - 1
	c.draft = ""
	c.status = to
	c.mu.Unlock()

	md := c.metadata()
	c.publish(events.NewTurnAppendedEvent(md, index, turn.Question, turn.Answer, err))
	c.publish(events.NewDraftChangedEvent(md, ""))
	c.publish(events.NewStatusChangedEvent(md, StatusPending.String(), to.String()))

	return nil
}

// callService converts panics into errors so a misbehaving service cannot leave the status Pending.
func (c *Controller) callService(ctx context.Context, prompt string) (answer string, err error) {
	defer func() {
		if r := recover(); r != nil {
			answer = ""
			err = errors.Errorf("answer service panicked: %v", r)
		}
	}()

	if c.service == nil {
		return "", errors.New("no answer service configured")
	}

	return c.service.Answer(ctx, prompt)
}

// RetryLast puts the question of the most recent Turn back into the draft.
// It does not resubmit. It is a no-op on an empty conversation.
func (c *Controller) RetryLast() {
	c.mu.Lock()
	last, ok := c.conversation.Last()
	if !ok {
		c.mu.Unlock()
		return
	}
	c.draft = last.Question
	c.mu.Unlock()

	c.publish(events.NewDraftChangedEvent(c.metadata(), last.Question))
}

// CopyLast writes the answer of the most recent Turn to the clipboard sink.
// It is a no-op on an empty conversation or without a sink.
func (c *Controller) CopyLast() error {
	last, ok := c.Last()
	if !ok || c.clipboard == nil {
		return nil
	}

	if err := c.clipboard.WriteText(last.Answer); err != nil {
		return errors.Wrap(err, "could not copy answer to clipboard")
	}

	c.publish(events.NewAnswerCopiedEvent(c.metadata(), last.Answer))
	return nil
}

// SetDraft replaces the draft input. It has no other effect.
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	if c.draft == text {
		c.mu.Unlock()
		return
	}
	c.draft = text
	c.mu.Unlock()

	c.publish(events.NewDraftChangedEvent(c.metadata(), text))
}

func (c *Controller) Status() RequestStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Controller) Draft() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.draft
}

func (c *Controller) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conversation.Len()
}

func (c *Controller) Last() (Turn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conversation.Last()
}

func (c *Controller) Turns() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conversation.Turns()
}

func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{
		Turns:  c.conversation.Turns(),
		Status: c.status,
		Draft:  c.draft,
	}
}

func (c *Controller) String() string {
	s := c.Snapshot()
	return fmt.Sprintf("Controller{session: %s, turns: %d, status: %s}", c.sessionID, len(s.Turns), s.Status)
}

func (c *Controller) metadata() events.EventMetadata {
	return events.NewEventMetadata(c.sessionID)
}

func (c *Controller) publish(e events.Event) {
	if c.publisher == nil {
		return
	}
	c.publisher.PublishBlind(e)
}
