package answer

import (
	"context"
	"time"
)

// EchoService answers with the prompt itself, optionally after a delay.
// It is the offline stand-in for a real model.
type EchoService struct {
	Delay time.Duration
}

func NewEchoService() *EchoService {
	return &EchoService{}
}

func (e *EchoService) Answer(ctx context.Context, prompt string) (string, error) {
	if e.Delay <= 0 {
		return prompt, nil
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(e.Delay):
		return prompt, nil
	}
}
