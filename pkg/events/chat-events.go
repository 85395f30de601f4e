package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type EventType string

const (
	// EventTypeStatusChanged is emitted on every request status transition.
	EventTypeStatusChanged EventType = "status-changed"
	// EventTypeTurnAppended is emitted once per resolved submission, success or failure.
	EventTypeTurnAppended EventType = "turn-appended"
	EventTypeDraftChanged EventType = "draft-changed"
	EventTypeAnswerCopied EventType = "answer-copied"
)

type Event interface {
	Type() EventType
	Metadata() EventMetadata
	Payload() []byte
}

type EventMetadata struct {
	SessionID uuid.UUID `json:"session_id"`
	Time      time.Time `json:"time"`
}

func NewEventMetadata(sessionID uuid.UUID) EventMetadata {
	return EventMetadata{
		SessionID: sessionID,
		Time:      time.Now(),
	}
}

func (em EventMetadata) MarshalZerologObject(e *zerolog.Event) {
	e.Str("session_id", em.SessionID.String())
	e.Time("time", em.Time)
}

type EventImpl struct {
	Type_     EventType     `json:"type"`
	Metadata_ EventMetadata `json:"meta"`

	// store payload if the event was deserialized from JSON (see NewEventFromJson), not further used
	payload []byte
}

func (e *EventImpl) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", string(e.Type_))
	ev.Object("meta", e.Metadata_)
}

func (e *EventImpl) Type() EventType {
	return e.Type_
}

func (e *EventImpl) Metadata() EventMetadata {
	return e.Metadata_
}

func (e *EventImpl) Payload() []byte {
	return e.payload
}

func (e *EventImpl) SetPayload(b []byte) {
	e.payload = b
}

var _ Event = &EventImpl{}

type EventStatusChanged struct {
	EventImpl
	From string `json:"from"`
	To   string `json:"to"`
}

func NewStatusChangedEvent(metadata EventMetadata, from, to string) *EventStatusChanged {
	return &EventStatusChanged{
		EventImpl: EventImpl{Type_: EventTypeStatusChanged, Metadata_: metadata},
		From:      from,
		To:        to,
	}
}

type EventTurnAppended struct {
	EventImpl
	Index    int    `json:"index"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Failed   bool   `json:"failed,omitempty"`
	// Error carries the underlying service error text for failed turns. It is
	// never shown in the transcript.
	Error string `json:"error,omitempty"`
}

func NewTurnAppendedEvent(metadata EventMetadata, index int, question, answer string, err error) *EventTurnAppended {
	ret := &EventTurnAppended{
		EventImpl: EventImpl{Type_: EventTypeTurnAppended, Metadata_: metadata},
		Index:     index,
		Question:  question,
		Answer:    answer,
	}
	if err != nil {
		ret.Failed = true
		ret.Error = err.Error()
	}
	return ret
}

type EventDraftChanged struct {
	EventImpl
	Draft string `json:"draft"`
}

func NewDraftChangedEvent(metadata EventMetadata, draft string) *EventDraftChanged {
	return &EventDraftChanged{
		EventImpl: EventImpl{Type_: EventTypeDraftChanged, Metadata_: metadata},
		Draft:     draft,
	}
}

type EventAnswerCopied struct {
	EventImpl
	Answer string `json:"answer"`
}

func NewAnswerCopiedEvent(metadata EventMetadata, answer string) *EventAnswerCopied {
	return &EventAnswerCopied{
		EventImpl: EventImpl{Type_: EventTypeAnswerCopied, Metadata_: metadata},
		Answer:    answer,
	}
}

func NewEventFromJson(b []byte) (Event, error) {
	var e *EventImpl
	err := json.Unmarshal(b, &e)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("empty event payload")
	}

	e.payload = b

	switch e.Type_ {
	case EventTypeStatusChanged:
		ret, ok := ToTypedEvent[EventStatusChanged](e)
		if !ok {
			return nil, fmt.Errorf("could not cast event to EventStatusChanged")
		}
		return ret, nil
	case EventTypeTurnAppended:
		ret, ok := ToTypedEvent[EventTurnAppended](e)
		if !ok {
			return nil, fmt.Errorf("could not cast event to EventTurnAppended")
		}
		return ret, nil
	case EventTypeDraftChanged:
		ret, ok := ToTypedEvent[EventDraftChanged](e)
		if !ok {
			return nil, fmt.Errorf("could not cast event to EventDraftChanged")
		}
		return ret, nil
	case EventTypeAnswerCopied:
		ret, ok := ToTypedEvent[EventAnswerCopied](e)
		if !ok {
			return nil, fmt.Errorf("could not cast event to EventAnswerCopied")
		}
		return ret, nil
	}

	return nil, fmt.Errorf("unknown event type: %s", e.Type_)
}

// ToTypedEvent decodes the raw payload of e into T and keeps the payload around.
func ToTypedEvent[T any](e Event) (*T, bool) {
	var ret *T
	err := json.Unmarshal(e.Payload(), &ret)
	if err != nil || ret == nil {
		return nil, false
	}

	if setter, ok := any(ret).(interface{ SetPayload([]byte) }); ok {
		setter.SetPayload(e.Payload())
	}

	return ret, true
}
