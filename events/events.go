// Package events carries social graph activity on an in-process watermill
// bus. Publishing happens after the storage write succeeded and is best
// effort: a failed publish is logged, never returned to the caller.
package events

import (
	"context"
	"encoding/json"
	"time"

	Logger "github.com/Luismorlan/socialmux/utils/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	TopicUserFollowed   = "topic.user_followed"
	TopicUserUnfollowed = "topic.user_unfollowed"
	TopicPostCreated    = "topic.post_created"
	TopicPostUpdated    = "topic.post_updated"
	TopicPostDeleted    = "topic.post_deleted"
	TopicPostLiked      = "topic.post_liked"
	TopicPostUnliked    = "topic.post_unliked"
	TopicCommentCreated = "topic.comment_created"
)

// AllTopics lists every topic the services publish to.
var AllTopics = []string{
	TopicUserFollowed,
	TopicUserUnfollowed,
	TopicPostCreated,
	TopicPostUpdated,
	TopicPostDeleted,
	TopicPostLiked,
	TopicPostUnliked,
	TopicCommentCreated,
}

// Event is the payload of every topic. ActorID acted on SubjectID, which is
// a user, post or comment id depending on the topic.
type Event struct {
	Topic     string    `json:"topic"`
	ActorID   string    `json:"actor_id"`
	SubjectID string    `json:"subject_id"`
	At        time.Time `json:"at"`
}

// Publisher is what services depend on.
type Publisher interface {
	Publish(ctx context.Context, topic string, actorID string, subjectID string)
}

// Bus publishes events on a watermill go channel.
type Bus struct {
	EventBus *gochannel.GoChannel
}

func NewBus() *Bus {
	return &Bus{
		EventBus: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 256},
			watermill.NewStdLogger(false, false),
		),
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, actorID string, subjectID string) {
	data, err := json.Marshal(Event{Topic: topic, ActorID: actorID, SubjectID: subjectID, At: time.Now()})
	if err != nil {
		Logger.Log.Errorf("fail to marshal event for topic %s: %v", topic, err)
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	if err := b.EventBus.Publish(topic, msg); err != nil {
		Logger.Log.Errorf("fail to publish event to topic %s: %v", topic, err)
	}
}

func (b *Bus) Close() error {
	return b.EventBus.Close()
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, topic string, actorID string, subjectID string) {}
