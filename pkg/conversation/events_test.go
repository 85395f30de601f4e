package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/asker/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerPublishesLifecycleEvents(t *testing.T) {
	router, err := events.NewEventRouter()
	require.NoError(t, err)
	defer func() { _ = router.Close() }()

	received := make(chan events.Event, 16)
	router.AddHandler("collect", events.TopicChat, func(msg *message.Message) error {
		defer msg.Ack()
		e, err := events.NewEventFromJson(msg.Payload)
		if err != nil {
			return err
		}
		received <- e
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = router.Run(ctx) }()
	<-router.Running()

	publisher := events.NewPublisherManager()
	publisher.SubscribePublisher(events.TopicChat, router.Publisher)

	c := NewController(failingAnswer(), WithPublisher(publisher))
	require.NoError(t, c.Submit(context.Background(), "2+2?"))

	var got []events.Event
	timeout := time.After(5 * time.Second)
	for len(got) < 4 {
		select {
		case e := <-received:
			got = append(got, e)
		case <-timeout:
			t.Fatalf("only received %d events", len(got))
		}
	}

	pending, ok := got[0].(*events.EventStatusChanged)
	require.True(t, ok)
	assert.Equal(t, "idle", pending.From)
	assert.Equal(t, "pending", pending.To)
	assert.Equal(t, c.SessionID(), pending.Metadata().SessionID)

	appended, ok := got[1].(*events.EventTurnAppended)
	require.True(t, ok)
	assert.Equal(t, 0, appended.Index)
	assert.Equal(t, FailureAnswer, appended.Answer)
	assert.True(t, appended.Failed)
	assert.Contains(t, appended.Error, "connection refused")

	_, ok = got[2].(*events.EventDraftChanged)
	require.True(t, ok)

	done, ok := got[3].(*events.EventStatusChanged)
	require.True(t, ok)
	assert.Equal(t, "failed", done.To)
}
