package conversation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClipboard struct {
	mu     sync.Mutex
	writes []string
	err    error
}

func (r *recordingClipboard) WriteText(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.writes = append(r.writes, text)
	return nil
}

func staticAnswer(answer string) AnswerFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		return answer, nil
	}
}

func failingAnswer() AnswerFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("connection refused")
	}
}

func TestSubmitSuccess(t *testing.T) {
	c := NewController(staticAnswer("4"))
	c.SetDraft("2+2?")

	err := c.Submit(context.Background(), "2+2?")
	require.NoError(t, err)

	assert.Equal(t, []Turn{{Question: "2+2?", Answer: "4"}}, c.Turns())
	assert.Equal(t, StatusSucceeded, c.Status())
	assert.Equal(t, "", c.Draft())
}

func TestSubmitFailureIsAbsorbed(t *testing.T) {
	c := NewController(failingAnswer())
	c.SetDraft("2+2?")

	err := c.Submit(context.Background(), "2+2?")
	require.NoError(t, err)

	assert.Equal(t, []Turn{{Question: "2+2?", Answer: FailureAnswer, Failed: true}}, c.Turns())
	assert.Equal(t, StatusFailed, c.Status())
	assert.Equal(t, "", c.Draft())
}

func TestSubmitPanickingServiceFails(t *testing.T) {
	c := NewController(AnswerFunc(func(ctx context.Context, prompt string) (string, error) {
		panic("boom")
	}))

	require.NoError(t, c.Submit(context.Background(), "hello"))

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, FailureAnswer, last.Answer)
	assert.Equal(t, StatusFailed, c.Status())
}

func TestSubmitWithoutServiceFails(t *testing.T) {
	c := NewController(nil)

	require.NoError(t, c.Submit(context.Background(), "hello"))
	assert.Equal(t, StatusFailed, c.Status())
	assert.Equal(t, 1, c.Len())
}

func TestSubmitRejectsBlankPrompt(t *testing.T) {
	calls := 0
	c := NewController(AnswerFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "x", nil
	}))
	c.SetDraft("   ")

	for _, p := range []string{"", "   ", "\n\t"} {
		err := c.Submit(context.Background(), p)
		assert.ErrorIs(t, err, ErrEmptyPrompt)
	}

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, StatusIdle, c.Status())
	assert.Equal(t, "   ", c.Draft())
}

func TestSubmitKeepsQuestionVerbatim(t *testing.T) {
	var got string
	c := NewController(AnswerFunc(func(ctx context.Context, prompt string) (string, error) {
		got = prompt
		return "ok", nil
	}))

	require.NoError(t, c.Submit(context.Background(), "  padded  "))

	assert.Equal(t, "  padded  ", got)
	last, _ := c.Last()
	assert.Equal(t, "  padded  ", last.Question)
}

func TestSubmitWhilePendingIsRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	calls := 0
	c := NewController(AnswerFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		close(started)
		<-release
		return "first", nil
	}))

	done := make(chan error, 1)
	go func() {
		done <- c.Submit(context.Background(), "first")
	}()

	<-started
	assert.Equal(t, StatusPending, c.Status())
	assert.True(t, c.Snapshot().Presentation().SubmitLabel == PendingSubmitLabel)

	err := c.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, ErrRequestPending)
	assert.Equal(t, 0, c.Len())

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("submit did not return")
	}

	assert.Equal(t, 1, calls)
	assert.Equal(t, []Turn{{Question: "first", Answer: "first"}}, c.Turns())
	assert.Equal(t, StatusSucceeded, c.Status())
}

func TestSubmitAfterTerminalStatus(t *testing.T) {
	fail := true
	c := NewController(AnswerFunc(func(ctx context.Context, prompt string) (string, error) {
		if fail {
			return "", errors.New("bad gateway")
		}
		return "answer " + prompt, nil
	}))

	require.NoError(t, c.Submit(context.Background(), "A"))
	assert.Equal(t, StatusFailed, c.Status())

	fail = false
	require.NoError(t, c.Submit(context.Background(), "B"))
	assert.Equal(t, StatusSucceeded, c.Status())

	require.NoError(t, c.Submit(context.Background(), "B"))
	assert.Equal(t, 3, c.Len())
}

func TestSequentialTurnsAndRetry(t *testing.T) {
	c := NewController(AnswerFunc(func(ctx context.Context, prompt string) (string, error) {
		return "re: " + prompt, nil
	}))

	require.NoError(t, c.Submit(context.Background(), "A"))
	require.NoError(t, c.Submit(context.Background(), "B"))

	assert.Equal(t, []Turn{
		{Question: "A", Answer: "re: A"},
		{Question: "B", Answer: "re: B"},
	}, c.Turns())

	c.RetryLast()
	assert.Equal(t, "B", c.Draft())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, StatusSucceeded, c.Status())
}

func TestRetryLastOnEmptyConversation(t *testing.T) {
	c := NewController(staticAnswer("x"))
	c.SetDraft("work in progress")

	c.RetryLast()

	assert.Equal(t, "work in progress", c.Draft())
	assert.Equal(t, StatusIdle, c.Status())
}

func TestRetryLastRefillsFailedQuestion(t *testing.T) {
	c := NewController(failingAnswer())
	require.NoError(t, c.Submit(context.Background(), "Q1"))

	c.RetryLast()

	assert.Equal(t, "Q1", c.Draft())
	assert.Equal(t, StatusFailed, c.Status())
	assert.Equal(t, 1, c.Len())
}

func TestCopyLast(t *testing.T) {
	clip := &recordingClipboard{}
	c := NewController(staticAnswer("A1"), WithClipboard(clip))
	require.NoError(t, c.Submit(context.Background(), "Q1"))
	before := c.Snapshot()

	require.NoError(t, c.CopyLast())
	require.NoError(t, c.CopyLast())

	assert.Equal(t, []string{"A1", "A1"}, clip.writes)
	assert.Equal(t, before, c.Snapshot())
}

func TestCopyLastOnEmptyConversation(t *testing.T) {
	clip := &recordingClipboard{}
	c := NewController(staticAnswer("A1"), WithClipboard(clip))

	require.NoError(t, c.CopyLast())
	assert.Empty(t, clip.writes)
}

func TestCopyLastSinkError(t *testing.T) {
	clip := &recordingClipboard{err: errors.New("no display")}
	c := NewController(staticAnswer("A1"), WithClipboard(clip))
	require.NoError(t, c.Submit(context.Background(), "Q1"))
	before := c.Snapshot()

	err := c.CopyLast()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no display")
	assert.Equal(t, before, c.Snapshot())
}

func TestSetDraftOnlyTouchesDraft(t *testing.T) {
	c := NewController(staticAnswer("x"))
	require.NoError(t, c.Submit(context.Background(), "Q"))

	c.SetDraft("next")

	assert.Equal(t, "next", c.Draft())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, StatusSucceeded, c.Status())
}

func TestAnswerServiceFailureUnwraps(t *testing.T) {
	cause := errors.New("timeout")
	err := error(&AnswerServiceFailure{Prompt: "p", Err: cause})

	var failure *AnswerServiceFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "p", failure.Prompt)
	assert.ErrorIs(t, err, cause)
}
