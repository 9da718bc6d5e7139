package pubsub

import (
	"sync"

	"github.com/rotodraft/draftroom/internal/logger"
)

// Event types published over the draft bus.
const (
	EventDraftStart    = "draft:start"
	EventDraftPick     = "draft:pick"
	EventDraftUndo     = "draft:undo"
	EventKeeperAdded   = "draft:keeper"
	EventKeeperRemoved = "draft:keeper_removed"
	EventDraftEnd      = "draft:end"
	EventSimPick       = "sim:pick"
	EventSimPaused     = "sim:paused"
	EventSimFinished   = "sim:finished"
)

// Event is a draft-bus event with a free-form payload.
type Event struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Upstream is an interface for upstream publishers (e.g., NATS)
type Upstream interface {
	Publish(Event)
	Subscribe() chan Event
	Unsubscribe(chan Event)
}

// PubSub fans events out to in-process subscribers, optionally bridging
// through an upstream broker so every instance sees every event.
type PubSub struct {
	mu          sync.RWMutex
	subscribers []chan Event
	upstream    Upstream
}

// New creates a standalone PubSub with no upstream.
func New() *PubSub {
	return &PubSub{subscribers: []chan Event{}}
}

// NewWithUpstream creates a PubSub bridged to an upstream broker. Publishes
// go to the upstream; events arriving from the upstream are forwarded to
// local subscribers.
func NewWithUpstream(upstream Upstream) *PubSub {
	ps := &PubSub{
		subscribers: []chan Event{},
		upstream:    upstream,
	}

	go func() {
		ch := upstream.Subscribe()
		for event := range ch {
			ps.publishLocal(event)
		}
		logger.Debug("pubsub: upstream channel closed")
	}()

	return ps
}

// Subscribe adds a new subscriber and returns a channel for receiving events
func (ps *PubSub) Subscribe() chan Event {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan Event, 10)
	ps.subscribers = append(ps.subscribers, ch)
	logger.Debug("pubsub: subscriber added", "total", len(ps.subscribers))
	return ch
}

// Unsubscribe removes a subscriber
func (ps *PubSub) Unsubscribe(ch chan Event) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for i, sub := range ps.subscribers {
		if sub == ch {
			close(ch)
			ps.subscribers = append(ps.subscribers[:i], ps.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers, via the upstream if one is
// configured (the upstream broadcasts back to this instance too).
func (ps *PubSub) Publish(event Event) {
	if ps.upstream != nil {
		ps.upstream.Publish(event)
		return
	}
	ps.publishLocal(event)
}

func (ps *PubSub) publishLocal(event Event) {
	ps.mu.RLock()
	subs := make([]chan Event, len(ps.subscribers))
	copy(subs, ps.subscribers)
	ps.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			// Skip if channel is full
		}
	}
}
