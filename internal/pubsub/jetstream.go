package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Billy-Davies-2/auction-draft/internal/logger"
	"github.com/nats-io/nats.go"
)

// DefaultStream is the JetStream stream holding draft events.
const DefaultStream = "DRAFT_EVENTS"

// jetStream is the fan-out shared by the external and embedded brokers:
// one JetStream subscription feeding any number of local channels.
type jetStream struct {
	nc          *nats.Conn
	js          nats.JetStreamContext
	sub         *nats.Subscription
	subject     string
	stream      string
	mu          sync.RWMutex
	subscribers []chan Event
}

func newJetStream(nc *nats.Conn, stream string, cfg nats.StreamConfig) (*jetStream, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}
	if stream == "" {
		stream = DefaultStream
	}
	cfg.Name = stream
	if _, err := js.StreamInfo(stream); err != nil {
		if _, err := js.AddStream(&cfg); err != nil {
			return nil, fmt.Errorf("create stream %s: %w", stream, err)
		}
		logger.Info("JetStream stream created", "stream", stream, "subjects", cfg.Subjects)
	}

	b := &jetStream{nc: nc, js: js, subject: cfg.Subjects[0], stream: stream}
	b.sub, err = js.Subscribe(b.subject, b.deliver, nats.ManualAck(), nats.DeliverNew())
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", b.subject, err)
	}
	return b, nil
}

func (b *jetStream) deliver(msg *nats.Msg) {
	var event Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode draft event", "error", err)
		_ = msg.Term()
		return
	}

	b.mu.RLock()
	subs := make([]chan Event, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			logger.Warn("NATS: skipping slow subscriber", "type", event.Type)
		}
	}
	_ = msg.Ack()
}

func (b *jetStream) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode draft event", "error", err, "type", event.Type)
		return
	}
	if _, err := b.js.Publish(b.subject, data); err != nil {
		logger.Error("Failed to publish draft event", "error", err, "subject", b.subject, "type", event.Type)
		return
	}
	logger.Debug("Published draft event", "type", event.Type, "subject", b.subject)
}

func (b *jetStream) Subscribe() chan Event {
	ch := make(chan Event, 100)
	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()
	return ch
}

func (b *jetStream) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// SubscriberCount returns the number of local channels.
func (b *jetStream) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// SubscribeDurable attaches a durable consumer so a side process (the
// Telegram notifier, say) resumes where it left off after a restart.
func (b *jetStream) SubscribeDurable(consumer string, handler func(Event)) (*nats.Subscription, error) {
	return b.js.Subscribe(b.subject, func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			_ = msg.Term()
			return
		}
		handler(event)
		_ = msg.Ack()
	}, nats.Durable(consumer), nats.ManualAck())
}

// Ping reports whether the broker connection is usable.
func (b *jetStream) Ping(ctx context.Context) error {
	if b.nc == nil || !b.nc.IsConnected() {
		return errors.New("nats: not connected")
	}
	if _, err := b.js.StreamInfo(b.stream, nats.Context(ctx)); err != nil {
		return fmt.Errorf("nats: stream %s: %w", b.stream, err)
	}
	return nil
}

func (b *jetStream) close() {
	if b.sub != nil {
		_ = b.sub.Unsubscribe()
	}
	b.mu.Lock()
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
	b.mu.Unlock()
	if b.nc != nil {
		b.nc.Close()
	}
}
