package pubsub

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Billy-Davies-2/auction-draft/internal/logger"
	"github.com/Billy-Davies-2/auction-draft/internal/metrics"
)

// Event types emitted by the draft service after each committed mutation.
const (
	EventDraftStart      = "draft:start"
	EventDraftReset      = "draft:reset"
	EventDraftPick       = "draft:pick"
	EventDraftUndo       = "draft:undo"
	EventDraftLoad       = "draft:load"
	EventKeepersLinked   = "keepers:link"
	EventValuations      = "valuations:calculated"
	EventPlayersIngested = "players:ingest"
)

// outboundBuffer bounds the queue between Publish and a slow upstream.
const outboundBuffer = 256

// Event is a single draft notification.
type Event struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Time    time.Time              `json:"ts"`
}

// NewEvent stamps an event with the current time.
func NewEvent(typ string, payload map[string]interface{}) Event {
	return Event{Type: typ, Payload: payload, Time: time.Now().UTC()}
}

// Publisher is the narrow surface the draft service depends on.
type Publisher interface {
	Publish(Event)
}

// Upstream is a shared broker (NATS) that fans events out to every instance.
type Upstream interface {
	Publish(Event)
	Subscribe() chan Event
	Unsubscribe(chan Event)
}

// PubSub is the in-process hub. Publish never blocks the caller: local
// delivery skips full subscribers and upstream delivery goes through a
// bounded queue that drops when the broker falls behind.
type PubSub struct {
	mu          sync.RWMutex
	subscribers []chan Event
	upstream    Upstream
	outbound    chan Event
	closed      bool
	dropped     atomic.Int64
}

func New() *PubSub {
	return &PubSub{subscribers: []chan Event{}}
}

// NewWithUpstream bridges the hub to a broker. Events published here go
// to the broker, and everything the broker delivers reaches local
// subscribers, including this instance's own events.
func NewWithUpstream(upstream Upstream) *PubSub {
	ps := &PubSub{
		subscribers: []chan Event{},
		upstream:    upstream,
		outbound:    make(chan Event, outboundBuffer),
	}

	in := upstream.Subscribe()
	go func() {
		for event := range in {
			ps.publishLocal(event)
		}
		logger.Debug("pubsub: upstream channel closed")
	}()

	go func() {
		for event := range ps.outbound {
			upstream.Publish(event)
		}
	}()

	return ps
}

func (ps *PubSub) Subscribe() chan Event {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan Event, 16)
	ps.subscribers = append(ps.subscribers, ch)
	logger.Debug("pubsub: subscriber added", "total", len(ps.subscribers))
	return ch
}

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

// SubscriberCount reports the number of local subscribers.
func (ps *PubSub) SubscriberCount() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers)
}

func (ps *PubSub) Publish(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	if ps.upstream == nil {
		ps.publishLocal(event)
		return
	}
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	if ps.closed {
		return
	}
	select {
	case ps.outbound <- event:
	default:
		ps.dropped.Add(1)
		metrics.EventDropped()
		logger.Warn("pubsub: upstream queue full, dropping event", "type", event.Type)
	}
}

// Dropped counts events discarded because the upstream queue was full.
func (ps *PubSub) Dropped() int64 {
	return ps.dropped.Load()
}

// Close stops forwarding to the upstream. Local subscribers stay open.
func (ps *PubSub) Close() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.closed || ps.outbound == nil {
		return
	}
	ps.closed = true
	close(ps.outbound)
}

// publishLocal holds the read lock across the sends so Unsubscribe cannot
// close a channel mid-broadcast. Sends never block.
func (ps *PubSub) publishLocal(event Event) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, ch := range ps.subscribers {
		select {
		case ch <- event:
		default:
			logger.Debug("pubsub: skipping slow subscriber", "type", event.Type)
		}
	}
}
