package cmds

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-go-golems/asker/pkg/answer"
	"github.com/go-go-golems/asker/pkg/conversation"
	"github.com/go-go-golems/asker/pkg/events"
	"github.com/go-go-golems/asker/pkg/ui"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const askRenderWidth = 100

func NewAskCommand() *cobra.Command {
	var copyAnswer bool
	var printEvents bool

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask a single question and print the answer",
		Long: "Ask a single question and print the answer. " +
			"Without arguments the question is read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			s, err := loadSettings()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			var router *events.EventRouter
			var publisher *events.PublisherManager
			if printEvents {
				router, publisher, err = newEventPipeline()
				if err != nil {
					return err
				}
				defer func() {
					_ = router.Close()
				}()
				router.AddHandler("dump", events.TopicChat, router.DumpRawEvents(cmd.ErrOrStderr()))
			}

			service, err := answer.NewServiceFromSettings(s)
			if err != nil {
				return err
			}
			recorder := &causeRecorder{service: service}

			controller, err := newControllerWithService(s, recorder, publisher, os.Stdout)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			eg, ctx := errgroup.WithContext(ctx)

			if router != nil {
				eg.Go(func() error {
					return router.Run(ctx)
				})
			}

			eg.Go(func() error {
				defer cancel()

				if router != nil {
					select {
					case <-router.Running():
					case <-ctx.Done():
						return ctx.Err()
					}
				}

				return controller.Submit(ctx, prompt)
			})

			if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			return reportAnswer(out, controller, recorder.Cause(), s.Markdown, copyAnswer)
		},
	}

	cmd.Flags().BoolVar(&copyAnswer, "copy", false, "copy the answer to the clipboard")
	cmd.Flags().BoolVar(&printEvents, "print-events", false, "print controller events to stderr as JSON")

	return cmd
}

// causeRecorder keeps the last service error. The controller only records the
// failure sentinel, ask also reports what went wrong.
type causeRecorder struct {
	service conversation.AnswerService

	mu    sync.Mutex
	cause error
}

func (c *causeRecorder) Answer(ctx context.Context, prompt string) (string, error) {
	ret, err := c.service.Answer(ctx, prompt)
	c.mu.Lock()
	c.cause = err
	c.mu.Unlock()
	return ret, err
}

func (c *causeRecorder) Cause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cause
}

// reportAnswer prints the last answer, then copies it when asked.
// A failed turn is returned as an error and never copied.
func reportAnswer(
	w io.Writer,
	controller *conversation.Controller,
	cause error,
	markdown bool,
	copyAnswer bool,
) error {
	last, ok := controller.Last()
	if !ok {
		return errors.New("no answer received")
	}
	if last.Failed {
		if cause != nil {
			return errors.Wrap(cause, last.Answer)
		}
		return errors.Errorf("%s (see --log-level debug or --log-file for the cause)", last.Answer)
	}

	if err := printAnswer(w, last.Answer, markdown); err != nil {
		return err
	}

	if copyAnswer {
		return controller.CopyLast()
	}
	return nil
}

func readPrompt(args []string, in io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return "", errors.New("no question given")
	}

	b, err := io.ReadAll(in)
	if err != nil {
		return "", errors.Wrap(err, "could not read question from stdin")
	}
	return string(b), nil
}

func printAnswer(w io.Writer, text string, markdown bool) error {
	if markdown {
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			text = ui.NewMarkdownRenderer("").Render(text, askRenderWidth)
		}
	}

	_, err := fmt.Fprintln(w, text)
	return err
}
