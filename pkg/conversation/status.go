package conversation

import "strings"

// RequestStatus describes the single tracked request.
//
//	Idle ──submit──▶ Pending ──ok──▶ Succeeded
//	                    │                │
//	                    └──fail──▶ Failed◀┘ (either terminal state re-enters Pending on submit)
type RequestStatus int

const (
	StatusIdle RequestStatus = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

func (s RequestStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s RequestStatus) IsPending() bool {
	return s == StatusPending
}

// AcceptsSubmit reports whether a new submission may start from this status.
func (s RequestStatus) AcceptsSubmit() bool {
	return s == StatusIdle || s == StatusSucceeded || s == StatusFailed
}

const (
	SubmitLabel        = "Send"
	PendingSubmitLabel = "Thinking..."
	EmptyText          = "No conversation yet. Ask something!"
)

// State is a consistent copy of everything the Controller exposes to renderers.
type State struct {
	Turns  []Turn
	Status RequestStatus
	Draft  string
}

// Presentation is what a renderer needs to decide about widgets. It carries no styling.
type Presentation struct {
	SubmitLabel    string
	InputEnabled   bool
	SubmitEnabled  bool
	ActionsVisible bool
	// EmptyText is non-empty only when there is no history to show.
	EmptyText string
}

func (s State) Presentation() Presentation {
	pending := s.Status.IsPending()

	ret := Presentation{
		SubmitLabel:    SubmitLabel,
		InputEnabled:   !pending,
		SubmitEnabled:  !pending && strings.TrimSpace(s.Draft) != "",
		ActionsVisible: len(s.Turns) > 0 && !pending,
	}
	if pending {
		ret.SubmitLabel = PendingSubmitLabel
	}
	if len(s.Turns) == 0 {
		ret.EmptyText = EmptyText
	}

	return ret
}
