package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublish(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	messages, err := bus.EventBus.Subscribe(context.Background(), TopicPostLiked)
	require.Nil(t, err)

	// Go channel receive and send cannot be in the same routine, otherwise it
	// will cause deadlock.
	go bus.Publish(context.Background(), TopicPostLiked, "bob", "post-1")

	select {
	case msg := <-messages:
		msg.Ack()
		var e Event
		require.Nil(t, json.Unmarshal(msg.Payload, &e))
		assert.Equal(t, TopicPostLiked, e.Topic)
		assert.Equal(t, "bob", e.ActorID)
		assert.Equal(t, "post-1", e.SubjectID)
	case <-time.After(5 * time.Second):
		t.Fatal("event not received")
	}
}

func TestReporterReceivesAllTopics(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	received := make(chan Event, 64)
	reporter := NewReporter(bus, &statsd.NoOpClient{})
	reporter.onReported = func(e Event) {
		select {
		case received <- e:
		default:
		}
	}

	engine := NewEngine(context.Background(), reporter)
	engine.Start()
	defer engine.Shutdown()

	// Subscriptions are set up asynchronously and in AllTopics order, keep
	// publishing to the last topic until the reporter has seen it.
	deadline := time.After(5 * time.Second)
	for subscribed := false; !subscribed; {
		bus.Publish(context.Background(), TopicCommentCreated, "bob", "comment-1")
		select {
		case e := <-received:
			assert.Equal(t, TopicCommentCreated, e.Topic)
			subscribed = true
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("reporter never subscribed")
		}
	}

	bus.Publish(context.Background(), TopicUserFollowed, "bob", "alice")
	for {
		select {
		case e := <-received:
			if e.Topic == TopicUserFollowed {
				assert.Equal(t, "alice", e.SubjectID)
				return
			}
		case <-time.After(5 * time.Second):
			t.Fatal("follow event not reported")
		}
	}
}
