// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jason-s-yu/lobbyfinder/internal/lobby"
)

// DefaultQueueName is the Redis list (queue) name for lobby events.
const DefaultQueueName = "lobby_events"

// Connect creates a Redis client for addr and db and pings it.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// EventQueue pushes lobby events onto a Redis list for consumers outside
// this process.
type EventQueue struct {
	rdb   *redis.Client
	queue string
}

// NewEventQueue returns a lobby.Publisher writing to the named list.
func NewEventQueue(rdb *redis.Client, queue string) *EventQueue {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &EventQueue{rdb: rdb, queue: queue}
}

// Publish serializes the event to JSON, then pushes it to the Redis queue.
func (q *EventQueue) Publish(ctx context.Context, ev lobby.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal lobby event: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", q.queue, err)
	}
	return nil
}
