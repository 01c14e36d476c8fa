package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/DataDog/datadog-go/statsd"
	Logger "github.com/Luismorlan/socialmux/utils/log"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sirupsen/logrus"
)

const activityCounter = "activity"

// Reporter listens to every activity topic, writes an audit log line and
// counts the event in statsd.
type Reporter struct {
	Bus    *Bus
	Statsd statsd.ClientInterface

	// Called after an event is reported, used by tests.
	onReported func(Event)
}

func NewReporter(bus *Bus, client statsd.ClientInterface) *Reporter {
	return &Reporter{Bus: bus, Statsd: client}
}

func (r *Reporter) report(msg *message.Message) {
	msg.Ack()

	var e Event
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		Logger.Log.Warnf("drop malformed activity event %s: %v", msg.UUID, err)
		return
	}
	Logger.Log.WithFields(logrus.Fields{
		"topic":   e.Topic,
		"actor":   e.ActorID,
		"subject": e.SubjectID,
	}).Info("activity")
	if err := r.Statsd.Incr(activityCounter, []string{"topic:" + e.Topic}, 1); err != nil {
		Logger.Log.Infoln("cannot report activity count")
	}
	if r.onReported != nil {
		r.onReported(e)
	}
}

func (r *Reporter) RunModule(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, topic := range AllTopics {
		messages, err := r.Bus.EventBus.Subscribe(ctx, topic)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func(messages <-chan *message.Message) {
			defer wg.Done()
			for msg := range messages {
				r.report(msg)
			}
		}(messages)
	}
	wg.Wait()
	return nil
}

func (r *Reporter) Name() string {
	return "activity_reporter"
}
