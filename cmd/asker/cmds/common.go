package cmds

import (
	"io"

	"github.com/go-go-golems/asker/pkg/answer"
	"github.com/go-go-golems/asker/pkg/clipboard"
	"github.com/go-go-golems/asker/pkg/conversation"
	"github.com/go-go-golems/asker/pkg/events"
	"github.com/go-go-golems/asker/pkg/settings"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func loadSettings() (*settings.Settings, error) {
	s, err := settings.FromViper(viper.GetViper())
	if err != nil {
		return nil, errors.Wrap(err, "invalid settings")
	}
	log.Debug().
		Str("provider", string(s.Provider)).
		Str("model", s.Model).
		Str("clipboard", s.Clipboard).
		Msg("loaded settings")
	return s, nil
}

// newController wires the answer service and clipboard sink named by s.
// publisher may be nil. terminal receives OSC 52 sequences.
func newController(
	s *settings.Settings,
	publisher *events.PublisherManager,
	terminal io.Writer,
) (*conversation.Controller, error) {
	service, err := answer.NewServiceFromSettings(s)
	if err != nil {
		return nil, err
	}
	return newControllerWithService(s, service, publisher, terminal)
}

func newControllerWithService(
	s *settings.Settings,
	service conversation.AnswerService,
	publisher *events.PublisherManager,
	terminal io.Writer,
) (*conversation.Controller, error) {
	sink, err := clipboard.NewSink(s.Clipboard, terminal)
	if err != nil {
		return nil, err
	}

	options := []conversation.ControllerOption{
		conversation.WithClipboard(sink),
	}
	if publisher != nil {
		options = append(options, conversation.WithPublisher(publisher))
	}

	return conversation.NewController(service, options...), nil
}

// newEventPipeline creates a router and a publisher manager that feeds it on events.TopicChat.
func newEventPipeline() (*events.EventRouter, *events.PublisherManager, error) {
	router, err := events.NewEventRouter(events.WithVerbose(viper.GetBool("verbose")))
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not create event router")
	}

	publisher := events.NewPublisherManager()
	publisher.SubscribePublisher(events.TopicChat, router.Publisher)

	return router, publisher, nil
}
