package cmds

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-go-golems/asker/pkg/clipboard"
	"github.com/go-go-golems/asker/pkg/conversation"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPromptJoinsArgs(t *testing.T) {
	p, err := readPrompt([]string{"what", "is", "2+2?"}, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "what is 2+2?", p)
}

func TestReadPromptFromReader(t *testing.T) {
	p, err := readPrompt(nil, strings.NewReader("  line one\nline two\n"))
	require.NoError(t, err)
	assert.Equal(t, "  line one\nline two\n", p)
}

func TestPrintAnswerPlainWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printAnswer(&buf, "# Title", true))
	assert.Equal(t, "# Title\n", buf.String())
}

func TestInitLoggerQuietWithoutFile(t *testing.T) {
	require.NoError(t, InitLogger(&LogConfig{Level: "info", Quiet: true}))
}

type failingSink struct {
	writes int
}

func (f *failingSink) WriteText(string) error {
	f.writes++
	return errors.New("no clipboard")
}

func submitted(t *testing.T, service conversation.AnswerService, sink conversation.ClipboardSink) *conversation.Controller {
	t.Helper()
	c := conversation.NewController(service, conversation.WithClipboard(sink))
	require.NoError(t, c.Submit(context.Background(), "2+2?"))
	return c
}

func TestReportAnswerFailedTurnIsNotCopied(t *testing.T) {
	recorder := &causeRecorder{service: conversation.AnswerFunc(func(context.Context, string) (string, error) {
		return "", errors.New("connection refused")
	})}
	sink := &clipboard.Memory{}
	c := submitted(t, recorder, sink)

	var buf bytes.Buffer
	err := reportAnswer(&buf, c, recorder.Cause(), false, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), conversation.FailureAnswer)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, sink.Writes())
	assert.Empty(t, buf.String())
}

func TestReportAnswerFailedTurnWithoutCause(t *testing.T) {
	c := submitted(t, nil, &clipboard.Memory{})

	err := reportAnswer(&bytes.Buffer{}, c, nil, false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), conversation.FailureAnswer)
	assert.Contains(t, err.Error(), "--log-level")
}

func TestReportAnswerPrintsBeforeCopying(t *testing.T) {
	sink := &failingSink{}
	c := submitted(t, conversation.AnswerFunc(func(context.Context, string) (string, error) {
		return "4", nil
	}), sink)

	var buf bytes.Buffer
	err := reportAnswer(&buf, c, nil, false, true)
	require.Error(t, err)
	assert.Equal(t, "4\n", buf.String())
	assert.Equal(t, 1, sink.writes)
}

func TestReportAnswerCopies(t *testing.T) {
	sink := &clipboard.Memory{}
	c := submitted(t, conversation.AnswerFunc(func(context.Context, string) (string, error) {
		return "4", nil
	}), sink)

	var buf bytes.Buffer
	require.NoError(t, reportAnswer(&buf, c, nil, false, true))
	assert.Equal(t, "4\n", buf.String())
	assert.Equal(t, []string{"4"}, sink.Writes())
}

func TestCauseRecorderClearsOnSuccess(t *testing.T) {
	fail := true
	recorder := &causeRecorder{service: conversation.AnswerFunc(func(context.Context, string) (string, error) {
		if fail {
			return "", errors.New("boom")
		}
		return "ok", nil
	})}

	_, _ = recorder.Answer(context.Background(), "q")
	assert.Error(t, recorder.Cause())

	fail = false
	_, _ = recorder.Answer(context.Background(), "q")
	assert.NoError(t, recorder.Cause())
}
