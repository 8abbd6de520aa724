package lobby

import (
	"context"
	"testing"
	"time"
)

func recvEvent(t *testing.T, ch <-chan Event, within time.Duration) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatalf("subscriber channel closed unexpectedly")
		}
		return ev
	case <-time.After(within):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}

func TestFeedDeliversToAllSubscribers(t *testing.T) {
	f := NewFeed(4)
	a, b := f.Subscribe(), f.Subscribe()
	defer f.Unsubscribe(a)
	defer f.Unsubscribe(b)

	if err := f.Publish(context.Background(), Event{Type: EventCreated, LobbyID: 7}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	for _, s := range []*Subscriber{a, b} {
		if ev := recvEvent(t, s.OutChan, 100*time.Millisecond); ev.LobbyID != 7 {
			t.Fatalf("want lobby 7, got %d", ev.LobbyID)
		}
	}
}

func TestFeedDropsWhenSubscriberIsSlow(t *testing.T) {
	f := NewFeed(1)
	s := f.Subscribe()
	defer f.Unsubscribe(s)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			_ = f.Publish(context.Background(), Event{LobbyID: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publish blocked on a slow subscriber")
	}
	if got := len(s.OutChan); got != 1 {
		t.Fatalf("want 1 buffered event, got %d", got)
	}
}

func TestFeedUnsubscribeClosesChannel(t *testing.T) {
	f := NewFeed(1)
	s := f.Subscribe()
	if f.Len() != 1 {
		t.Fatalf("want 1 subscriber, got %d", f.Len())
	}
	f.Unsubscribe(s)
	f.Unsubscribe(s)
	if _, ok := <-s.OutChan; ok {
		t.Fatalf("expected closed channel")
	}
	if f.Len() != 0 {
		t.Fatalf("want 0 subscribers, got %d", f.Len())
	}
	// publishing after unsubscribe must not panic
	_ = f.Publish(context.Background(), Event{})
}

func TestFeedCloseDropsSubscribers(t *testing.T) {
	f := NewFeed(4)
	s := f.Subscribe()
	f.Close()

	if f.Len() != 0 {
		t.Fatalf("expected no subscribers after close, got %d", f.Len())
	}
	if _, ok := <-s.OutChan; ok {
		t.Fatalf("expected closed channel")
	}
	// unsubscribing after close is a no-op
	f.Unsubscribe(s)
}
