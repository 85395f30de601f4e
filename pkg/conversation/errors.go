package conversation

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyPrompt rejects a submission whose prompt is blank after trimming.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrRequestPending rejects a submission while another request is in flight.
	ErrRequestPending = errors.New("a request is already pending")
)

// AnswerServiceFailure covers every way the answer service can fail: transport
// errors, non-success responses and malformed payloads alike. It is recorded
// in history as FailureAnswer and never returned from Submit.
type AnswerServiceFailure struct {
	Prompt string
	Err    error
}

func (e *AnswerServiceFailure) Error() string {
	return fmt.Sprintf("answer service failure: %v", e.Err)
}

func (e *AnswerServiceFailure) Unwrap() error {
	return e.Err
}
