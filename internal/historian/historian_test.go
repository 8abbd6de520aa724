package historian

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/lobbyfinder/internal/cache"
	"github.com/jason-s-yu/lobbyfinder/internal/lobby"
)

type memorySink struct {
	mu      sync.Mutex
	batches [][]lobby.Event
	fail    bool
}

func (s *memorySink) SaveEvents(_ context.Context, events []lobby.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("db down")
	}
	s.batches = append(s.batches, events)
	return nil
}

func (s *memorySink) events() []lobby.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []lobby.Event
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestHistorianDrainsQueue(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()

	queue := cache.NewEventQueue(rdb, "lobby_events")
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		ev := lobby.Event{ID: uuid.New(), Type: lobby.EventUpdated, Action: "join", LobbyID: 9}
		ids = append(ids, ev.ID)
		require.NoError(t, queue.Publish(ctx, ev))
	}
	mr.RPush("lobby_events", "not json")

	sink := &memorySink{}
	h := New(rdb, sink, "lobby_events", quietLogger(), Options{
		BatchSize:  2,
		FlushDelay: 20 * time.Millisecond,
		PopTimeout: 50 * time.Millisecond,
	})

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- h.Run(runCtx) }()

	require.Eventually(t, func() bool { return len(sink.events()) == 3 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	got := sink.events()
	for i, ev := range got {
		assert.Equal(t, ids[i], ev.ID)
	}
	assert.False(t, mr.Exists("lobby_events"))
}

func TestHistorianFlushesOnShutdown(t *testing.T) {
	_, rdb := newRedis(t)
	sink := &memorySink{}
	h := New(rdb, sink, "lobby_events", quietLogger(), Options{
		BatchSize:  100,
		FlushDelay: time.Hour,
		PopTimeout: 20 * time.Millisecond,
	})
	h.appendToBatch(context.Background(), lobby.Event{ID: uuid.New()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, h.Run(ctx))
	assert.Len(t, sink.events(), 1)
}

func TestHistorianDropsFailedBatch(t *testing.T) {
	_, rdb := newRedis(t)
	sink := &memorySink{fail: true}
	h := New(rdb, sink, "lobby_events", quietLogger(), Options{BatchSize: 1})

	h.appendToBatch(context.Background(), lobby.Event{ID: uuid.New()})
	sink.fail = false
	h.flush(context.Background())
	assert.Empty(t, sink.events())
}
