package cmds

import (
	"context"

	"github.com/go-go-golems/asker/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	glazed_settings "github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ConfigCommand emits the effective settings as a single row, API key redacted.
// Output format is picked with the glazed flags (--output yaml, json, table...).
type ConfigCommand struct {
	*cmds.CommandDescription
}

var _ cmds.GlazeCommand = (*ConfigCommand)(nil)

func NewConfigCommand() (*ConfigCommand, error) {
	glazedParameterLayer, err := glazed_settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, errors.Wrap(err, "could not create glazed parameter layer")
	}

	return &ConfigCommand{
		CommandDescription: cmds.NewCommandDescription(
			"config",
			cmds.WithShort("Print the effective settings"),
			cmds.WithLong("Print the settings asker resolves from flags, ASKER_* environment variables "+
				"and the config file. The API key is redacted."),
			cmds.WithLayersList(glazedParameterLayer),
		),
	}, nil
}

func (c *ConfigCommand) RunIntoGlazeProcessor(
	ctx context.Context,
	parsedLayers *layers.ParsedLayers,
	gp middlewares.Processor,
) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	return gp.AddRow(ctx, settingsRow(s, viper.ConfigFileUsed()))
}

func settingsRow(s *settings.Settings, configFile string) types.Row {
	r := s.Redacted()
	return types.NewRow(
		types.MRP("provider", string(r.Provider)),
		types.MRP("endpoint", r.Endpoint),
		types.MRP("model", r.Model),
		types.MRP("api-key", r.APIKey),
		types.MRP("base-url", r.BaseURL),
		types.MRP("clipboard", r.Clipboard),
		types.MRP("markdown", r.Markdown),
		types.MRP("config-file", configFile),
	)
}
