// internal/lobby/feed.go
package lobby

import (
	"context"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Subscriber is one live listener on the lobby feed, typically a websocket.
type Subscriber struct {
	ID      uuid.UUID
	OutChan chan Event
}

// Write pushes an event onto the subscriber's OutChan non-blockingly. Logs if dropped.
func (s *Subscriber) Write(ev Event) {
	select {
	case s.OutChan <- ev:
	default:
		log.Warnf("LobbyFeed: OutChan for subscriber %s full. Dropped event '%s' for lobby %d.", s.ID, ev.Type, ev.LobbyID)
	}
}

// Feed fans lobby events out to every subscriber in this process.
type Feed struct {
	mu          sync.Mutex
	subscribers map[uuid.UUID]*Subscriber
	buffer      int
}

// NewFeed creates a feed whose subscribers buffer up to buffer events.
func NewFeed(buffer int) *Feed {
	if buffer <= 0 {
		buffer = 16
	}
	return &Feed{
		subscribers: make(map[uuid.UUID]*Subscriber),
		buffer:      buffer,
	}
}

// Subscribe registers a new listener.
func (f *Feed) Subscribe() *Subscriber {
	s := &Subscriber{
		ID:      uuid.New(),
		OutChan: make(chan Event, f.buffer),
	}
	f.mu.Lock()
	f.subscribers[s.ID] = s
	f.mu.Unlock()
	return s
}

// Unsubscribe removes the listener and closes its channel. Safe to call twice.
func (f *Feed) Unsubscribe(s *Subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subscribers[s.ID]; !ok {
		return
	}
	delete(f.subscribers, s.ID)
	close(s.OutChan)
}

// Len returns the number of live subscribers.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}

// Publish delivers ev to all subscribers without blocking.
func (f *Feed) Publish(_ context.Context, ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subscribers {
		s.Write(ev)
	}
	return nil
}

// Close drops every subscriber, closing their channels. Websocket writers
// see the closed channel and end their connections.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, s := range f.subscribers {
		delete(f.subscribers, id)
		close(s.OutChan)
	}
}
