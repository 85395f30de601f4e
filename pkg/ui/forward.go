package ui

import (
	"github.com/ThreeDotsLabs/watermill/message"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/asker/pkg/events"
	"github.com/rs/zerolog/log"
)

// ControllerEventMsg tells the model that the controller state changed.
type ControllerEventMsg struct {
	Event events.Event
}

// EventForwarder moves controller events from the event router into the bubbletea loop.
//
// Handle never blocks: when the buffer is full the event is dropped. The model
// re-reads the controller snapshot on every message, so a dropped event only
// costs a redraw.
type EventForwarder struct {
	ch chan events.Event
}

func NewEventForwarder(buffer int) *EventForwarder {
	return &EventForwarder{
		ch: make(chan events.Event, buffer),
	}
}

// Handle is a watermill handler for events.TopicChat.
func (f *EventForwarder) Handle(msg *message.Message) error {
	msg.Ack()

	e, err := events.NewEventFromJson(msg.Payload)
	if err != nil {
		log.Warn().Err(err).Str("message_id", msg.UUID).Msg("could not decode controller event")
		return nil
	}

	select {
	case f.ch <- e:
	default:
		log.Debug().Str("event_type", string(e.Type())).Msg("ui event buffer full, dropping event")
	}
	return nil
}

// Wait returns a command that resolves with the next forwarded event.
func (f *EventForwarder) Wait() tea.Cmd {
	return func() tea.Msg {
		e, ok := <-f.ch
		if !ok {
			return nil
		}
		return ControllerEventMsg{Event: e}
	}
}

func (f *EventForwarder) Close() {
	close(f.ch)
}
