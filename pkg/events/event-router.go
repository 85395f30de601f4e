package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog/log"
)

type EventRouter struct {
	logger     watermill.LoggerAdapter
	Publisher  message.Publisher
	Subscriber message.Subscriber
	router     *message.Router
	verbose    bool
	// keeps events in publish order; handlers must ack without waiting on the publisher
	blockUntilAck bool
	outputBuffer  int64
}

type EventRouterOption func(*EventRouter)

func WithLogger(logger watermill.LoggerAdapter) EventRouterOption {
	return func(r *EventRouter) {
		r.logger = logger
	}
}

func WithVerbose(verbose bool) EventRouterOption {
	return func(r *EventRouter) {
		r.verbose = verbose
		r.logger = NewWatermillLogger(log.Logger)
	}
}

// WithBlockPublishUntilAck controls whether Publish waits for handlers to ack each message.
// Without it, delivery order across messages is not guaranteed.
func WithBlockPublishUntilAck(block bool) EventRouterOption {
	return func(r *EventRouter) {
		r.blockUntilAck = block
	}
}

func WithOutputBuffer(size int64) EventRouterOption {
	return func(r *EventRouter) {
		r.outputBuffer = size
	}
}

func NewEventRouter(options ...EventRouterOption) (*EventRouter, error) {
	ret := &EventRouter{
		logger:        watermill.NopLogger{},
		blockUntilAck: true,
		outputBuffer:  64,
	}

	for _, o := range options {
		o(ret)
	}

	goPubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            ret.outputBuffer,
		BlockPublishUntilSubscriberAck: ret.blockUntilAck,
	}, ret.logger)
	ret.Publisher = goPubSub
	ret.Subscriber = goPubSub

	router, err := message.NewRouter(message.RouterConfig{}, ret.logger)
	if err != nil {
		return nil, err
	}

	ret.router = router

	return ret, nil
}

func (e *EventRouter) Close() error {
	log.Debug().Msg("Closing publisher")
	err := e.Publisher.Close()
	if err != nil {
		log.Error().Err(err).Msg("Failed to close pubsub")
		// not returning just yet
	}

	log.Debug().Msg("Closing router")
	err = e.router.Close()
	if err != nil {
		log.Error().Err(err).Msg("Failed to close router")
	}
	log.Debug().Msg("Router closed")

	return nil
}

func (e *EventRouter) AddHandler(name string, topic string, f func(msg *message.Message) error) {
	e.router.AddNoPublisherHandler(name, topic, e.Subscriber, f)
}

// DumpRawEvents returns a handler that prints every event as indented JSON to w.
// Unless the router is verbose, metadata is collapsed to the event type and sequence number.
func (e *EventRouter) DumpRawEvents(w io.Writer) func(msg *message.Message) error {
	return func(msg *message.Message) error {
		defer msg.Ack()

		// returning an error would nack the message and have it redelivered forever
		var s map[string]interface{}
		err := json.Unmarshal(msg.Payload, &s)
		if err != nil {
			log.Warn().Err(err).Str("message_id", msg.UUID).Msg("could not decode event")
			return nil
		}
		if !e.verbose {
			s["seq"] = msg.Metadata.Get("sequence_number")
			delete(s, "meta")
		}
		s_, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			log.Warn().Err(err).Str("message_id", msg.UUID).Msg("could not encode event")
			return nil
		}
		if _, err = fmt.Fprintln(w, string(s_)); err != nil {
			log.Warn().Err(err).Msg("could not write event")
		}
		return nil
	}
}

func (e *EventRouter) Running() chan struct{} {
	return e.router.Running()
}

func (e *EventRouter) IsRunning() bool {
	return e.router.IsRunning()
}

func (e *EventRouter) Run(ctx context.Context) error {
	return e.router.Run(ctx)
}
