package pubsub

import (
	"sync"
	"testing"
	"time"
)

func receive(t *testing.T, ch chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	return Event{}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	ps := New()
	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()
	ch3 := ps.Subscribe()
	if ps.SubscriberCount() != 3 {
		t.Fatalf("expected 3 subscribers, got %d", ps.SubscriberCount())
	}

	ps.Unsubscribe(ch2)
	if ps.SubscriberCount() != 2 {
		t.Errorf("expected 2 subscribers, got %d", ps.SubscriberCount())
	}
	if _, ok := <-ch2; ok {
		t.Error("channel should be closed after unsubscribe")
	}

	ps.Publish(NewEvent(EventDraftPick, map[string]interface{}{"player_id": "p1"}))
	for _, ch := range []chan Event{ch1, ch3} {
		if ev := receive(t, ch); ev.Type != EventDraftPick {
			t.Errorf("got %s, want %s", ev.Type, EventDraftPick)
		}
	}
}

func TestUnsubscribeUnknownChannel(t *testing.T) {
	ps := New()
	ch := make(chan Event, 1)
	ps.Unsubscribe(ch)
	ch <- Event{Type: "still-open"}
}

func TestPublishStampsTime(t *testing.T) {
	ps := New()
	ch := ps.Subscribe()
	ps.Publish(Event{Type: EventDraftStart})
	if ev := receive(t, ch); ev.Time.IsZero() {
		t.Error("expected publish to stamp a timestamp")
	}
}

func TestPublishSkipsFullSubscriber(t *testing.T) {
	ps := New()
	slow := ps.Subscribe()
	for i := 0; i < cap(slow)+5; i++ {
		ps.Publish(Event{Type: EventDraftPick})
	}
	if len(slow) != cap(slow) {
		t.Errorf("expected full buffer, got %d/%d", len(slow), cap(slow))
	}
}

func TestConcurrentPublish(t *testing.T) {
	ps := New()
	ch := ps.Subscribe()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ps.Publish(Event{Type: EventDraftUndo})
		}()
	}
	wg.Wait()

	if len(ch) != 8 {
		t.Errorf("expected 8 buffered events, got %d", len(ch))
	}
}

func TestUnsubscribeDuringBroadcast(t *testing.T) {
	ps := New()
	subs := make([]chan Event, 64)
	for i := range subs {
		subs[i] = ps.Subscribe()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			ps.publishLocal(Event{Type: EventDraftPick})
		}
	}()
	go func() {
		defer wg.Done()
		for _, ch := range subs {
			ps.Unsubscribe(ch)
		}
	}()
	wg.Wait()

	if ps.SubscriberCount() != 0 {
		t.Fatalf("expected no subscribers, got %d", ps.SubscriberCount())
	}
	ps.publishLocal(Event{Type: EventDraftPick})
}

type mockUpstream struct {
	mu          sync.Mutex
	published   []Event
	subscribers []chan Event
	block       chan struct{}
}

func newMockUpstream() *mockUpstream {
	return &mockUpstream{}
}

func (m *mockUpstream) Publish(event Event) {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	m.published = append(m.published, event)
	subs := append([]chan Event(nil), m.subscribers...)
	m.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (m *mockUpstream) Subscribe() chan Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan Event, 100)
	m.subscribers = append(m.subscribers, ch)
	return ch
}

func (m *mockUpstream) Unsubscribe(ch chan Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, sub := range m.subscribers {
		if sub == ch {
			close(ch)
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			return
		}
	}
}

func (m *mockUpstream) publishedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}

func TestPublishWithUpstreamRoundTrips(t *testing.T) {
	up := newMockUpstream()
	ps := NewWithUpstream(up)
	defer ps.Close()
	ch := ps.Subscribe()

	ps.Publish(NewEvent(EventValuations, map[string]interface{}{"rate": 1.25}))

	ev := receive(t, ch)
	if ev.Type != EventValuations {
		t.Fatalf("got %s", ev.Type)
	}
	if ev.Payload["rate"] != 1.25 {
		t.Errorf("payload lost: %v", ev.Payload)
	}
	if up.publishedCount() != 1 {
		t.Errorf("expected 1 upstream publish, got %d", up.publishedCount())
	}
}

func TestUpstreamEventsReachLocalSubscribers(t *testing.T) {
	up := newMockUpstream()
	ps := NewWithUpstream(up)
	defer ps.Close()
	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()

	up.Publish(Event{Type: EventDraftLoad})

	for _, ch := range []chan Event{ch1, ch2} {
		if ev := receive(t, ch); ev.Type != EventDraftLoad {
			t.Errorf("got %s", ev.Type)
		}
	}
}

func TestPublishDoesNotBlockOnStalledUpstream(t *testing.T) {
	up := newMockUpstream()
	up.block = make(chan struct{})
	ps := NewWithUpstream(up)

	done := make(chan struct{})
	go func() {
		for i := 0; i < outboundBuffer+50; i++ {
			ps.Publish(Event{Type: EventDraftPick})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a stalled upstream")
	}
	if ps.Dropped() == 0 {
		t.Error("expected some events to be dropped")
	}
	ps.Close()
	close(up.block)
}

func TestPublishAfterCloseIsNoop(t *testing.T) {
	ps := NewWithUpstream(newMockUpstream())
	ps.Close()
	ps.Close()
	ps.Publish(Event{Type: EventDraftReset})
}
