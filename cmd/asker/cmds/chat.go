package cmds

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/asker/pkg/events"
	"github.com/go-go-golems/asker/pkg/tokens"
	"github.com/go-go-golems/asker/pkg/ui"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func NewChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions in an interactive terminal UI",
		Annotations: map[string]string{
			tuiAnnotation: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}

			router, publisher, err := newEventPipeline()
			if err != nil {
				return err
			}
			defer func() {
				_ = router.Close()
			}()

			forwarder := ui.NewEventForwarder(64)
			router.AddHandler("ui-forwarder", events.TopicChat, forwarder.Handle)

			controller, err := newController(s, publisher, os.Stdout)
			if err != nil {
				return err
			}

			options := []ui.ModelOption{
				ui.WithEventForwarder(forwarder),
			}
			if s.Markdown {
				// resolved before the program owns the terminal
				style := ui.DetectMarkdownStyle()
				options = append(options, ui.WithRenderer(ui.NewMarkdownRenderer(style)))
			}
			counter, err := tokens.NewCounter(s.Model)
			if err != nil {
				log.Warn().Err(err).Msg("token counting disabled")
			} else {
				options = append(options, ui.WithTokenCounter(counter))
			}

			programOptions := []tea.ProgramOption{
				tea.WithAltScreen(),
			}
			if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
				tty, err := ui.OpenTTY()
				if err != nil {
					return errors.Wrap(err, "stdin is not a terminal and no tty is available")
				}
				defer func() {
					_ = tty.Close()
				}()
				programOptions = append(programOptions, tea.WithInput(tty))
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			eg, ctx := errgroup.WithContext(ctx)

			options = append(options, ui.WithContext(ctx))
			p := tea.NewProgram(ui.InitialModel(controller, options...), programOptions...)

			eg.Go(func() error {
				return router.Run(ctx)
			})

			eg.Go(func() error {
				defer cancel()

				select {
				case <-router.Running():
				case <-ctx.Done():
					return ctx.Err()
				}

				go func() {
					<-ctx.Done()
					p.Quit()
				}()

				log.Debug().Str("session", controller.SessionID().String()).Msg("starting chat")
				if _, err := p.Run(); err != nil {
					return errors.Wrap(err, "chat ui failed")
				}
				return nil
			})

			err = eg.Wait()

			// the router has stopped delivering, unblock a pending forwarder wait
			_ = router.Close()
			forwarder.Close()

			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	return cmd
}
