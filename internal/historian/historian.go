// Package historian drains the lobby event queue in Redis and persists the
// events in batches.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/lobbyfinder/internal/lobby"
)

// Sink stores a batch of events.
type Sink interface {
	SaveEvents(ctx context.Context, events []lobby.Event) error
}

// Options tunes batching. Zero values take the defaults.
type Options struct {
	BatchSize  int           // flush once this many events are buffered (default 20)
	FlushDelay time.Duration // flush at least this often (default 500ms)
	PopTimeout time.Duration // BLPOP block time, bounds shutdown latency (default 3s)
}

// Historian pops events from a Redis list and hands them to a Sink.
type Historian struct {
	rdb    *redis.Client
	sink   Sink
	queue  string
	opts   Options
	logger *logrus.Logger

	batchMu sync.Mutex
	batch   []lobby.Event
}

// New constructs a Historian reading from queue.
func New(rdb *redis.Client, sink Sink, queue string, logger *logrus.Logger, opts Options) *Historian {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = 500 * time.Millisecond
	}
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = 3 * time.Second
	}
	return &Historian{
		rdb:    rdb,
		sink:   sink,
		queue:  queue,
		opts:   opts,
		logger: logger,
		batch:  make([]lobby.Event, 0, opts.BatchSize),
	}
}

// Run consumes the queue until ctx is cancelled, then flushes what is left.
func (h *Historian) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.opts.FlushDelay)
	defer ticker.Stop()
	defer h.flush(context.Background())

	h.logger.WithField("queue", h.queue).Info("historian started")
	defer h.logger.Info("historian shutting down")

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			h.flush(ctx)

		default:
			// BLPop with a timeout so that context cancellation is handled.
			res, err := h.rdb.BLPop(ctx, h.opts.PopTimeout, h.queue).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || ctx.Err() != nil {
					continue
				}
				h.logger.Errorf("BLPop: %v", err)
				select {
				case <-ctx.Done():
				case <-time.After(time.Second):
				}
				continue
			}
			if len(res) < 2 {
				continue
			}

			// res[0] is the queue name and res[1] the payload.
			var ev lobby.Event
			if err := json.Unmarshal([]byte(res[1]), &ev); err != nil {
				h.logger.Warnf("invalid lobby event record: %v", err)
				continue
			}
			h.appendToBatch(ctx, ev)
		}
	}
}

// appendToBatch adds an event to the in-memory batch and flushes if the threshold is reached.
func (h *Historian) appendToBatch(ctx context.Context, ev lobby.Event) {
	h.batchMu.Lock()
	h.batch = append(h.batch, ev)
	full := len(h.batch) >= h.opts.BatchSize
	h.batchMu.Unlock()

	if full {
		h.flush(ctx)
	}
}

// flush writes the current batch to the sink. A failed batch is logged and
// dropped.
func (h *Historian) flush(ctx context.Context) {
	h.batchMu.Lock()
	if len(h.batch) == 0 {
		h.batchMu.Unlock()
		return
	}
	batch := make([]lobby.Event, len(h.batch))
	copy(batch, h.batch)
	h.batch = h.batch[:0]
	h.batchMu.Unlock()

	if err := h.sink.SaveEvents(ctx, batch); err != nil {
		h.logger.WithField("events", len(batch)).Errorf("flush lobby events: %v", err)
		return
	}
	h.logger.Debugf("Flushed %d lobby events.", len(batch))
}
