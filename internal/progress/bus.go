// Package progress implements the progress bus described in §4.4: a
// best-effort, topic-keyed pub/sub fan-out from in-flight analysis runs to
// long-lived HTTP streams.
package progress

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/pairreview/pairreview/pkg/idgen"
	"github.com/pairreview/pairreview/pkg/logger"
)

// subscriberBuffer is the capacity of each subscriber's channel. A publish
// that finds a full channel drops the message rather than blocking, per
// §4.4's "at-most-once, best-effort" delivery contract.
const subscriberBuffer = 16

// Event is one progress-bus frame. The orchestrator publishes run-keyed
// progress frames and terminal summaries; the local-review/PR-ingest paths
// publish review-keyed external ingestion events.
type Event = any

type subscriber struct {
	id string
	ch chan Event
}

type topic struct {
	mu           sync.RWMutex
	subscribers  map[string]*subscriber
	lastTerminal Event
}

// Bus fans out published events to every live subscriber of a topic,
// replaying the last terminal message to new subscribers. It implements
// orchestrator.Publisher.
type Bus struct {
	mu     sync.RWMutex
	topics map[string]*topic
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{topics: make(map[string]*topic)}
}

func (b *Bus) topicFor(topicKey string, createIfMissing bool) *topic {
	b.mu.RLock()
	t, ok := b.topics[topicKey]
	b.mu.RUnlock()
	if ok || !createIfMissing {
		return t
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok = b.topics[topicKey]; ok {
		return t
	}
	t = &topic{subscribers: make(map[string]*subscriber)}
	b.topics[topicKey] = t
	return t
}

// Subscribe registers a new subscriber on topicKey and returns its event
// channel plus an unsubscribe func. If the topic already has a last
// terminal message, it is replayed immediately onto the channel.
func (b *Bus) Subscribe(topicKey string) (<-chan Event, func()) {
	t := b.topicFor(topicKey, true)

	sub := &subscriber{id: idgen.NewSubscriberID(), ch: make(chan Event, subscriberBuffer)}

	t.mu.Lock()
	t.subscribers[sub.id] = sub
	last := t.lastTerminal
	t.mu.Unlock()

	if last != nil {
		sub.ch <- last
	}

	unsubscribe := func() {
		t.mu.Lock()
		delete(t.subscribers, sub.id)
		t.mu.Unlock()
	}
	return sub.ch, unsubscribe
}

// Publish broadcasts event to every live subscriber of topicKey. A
// subscriber whose channel is full is skipped rather than blocking the
// publisher, satisfying the non-blocking-drop-on-full requirement. If event
// carries a terminal status (completed/failed/cancelled), it becomes the
// topic's replayable last-terminal message.
func (b *Bus) Publish(topicKey string, event Event) {
	t := b.topicFor(topicKey, true)

	t.mu.Lock()
	if isTerminalEvent(event) {
		t.lastTerminal = event
	}
	subs := make([]*subscriber, 0, len(t.subscribers))
	for _, s := range t.subscribers {
		subs = append(subs, s)
	}
	t.mu.Unlock()

	for _, s := range subs {
		select {
		case s.ch <- event:
		default:
			logger.Warn("dropped progress event for slow subscriber",
				zap.String("topic", topicKey), zap.String("subscriber_id", s.id))
		}
	}
}

func isTerminalEvent(event Event) bool {
	m, ok := event.(map[string]any)
	if !ok {
		return false
	}
	status, _ := m["status"].(string)
	switch status {
	case "completed", "failed", "cancelled":
		return true
	default:
		return false
	}
}

// MarshalFrame renders event as a single JSON line suitable for an SSE
// "data:" frame body.
func MarshalFrame(event Event) ([]byte, error) {
	return json.Marshal(event)
}
