package cmds

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-go-golems/asker/pkg/answer"
	"github.com/go-go-golems/asker/pkg/server"
	"github.com/go-go-golems/asker/pkg/settings"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func NewServeCommand() *cobra.Command {
	var addr string
	var origins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the answer endpoint the http provider talks to",
		Long: "Serve POST " + server.GeneratePath + " backed by a non-http provider. " +
			"The echo provider is used unless --provider is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			if !viper.IsSet("provider") {
				s.Provider = settings.ProviderEcho
			}
			if s.Provider == settings.ProviderHTTP {
				return errors.New("serve needs a non-http provider")
			}

			service, err := answer.NewServiceFromSettings(s)
			if err != nil {
				return err
			}

			srv := server.NewServer(addr, service, server.WithAllowedOrigins(origins...))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			eg, ctx := errgroup.WithContext(ctx)

			eg.Go(func() error {
				return srv.Run(ctx)
			})
			eg.Go(func() error {
				<-ctx.Done()
				log.Debug().Msg("received shutdown signal")
				return nil
			})

			if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":3000", "address to listen on")
	cmd.Flags().StringSliceVar(&origins, "allowed-origin", []string{"*"}, "CORS allowed origins")

	return cmd
}
