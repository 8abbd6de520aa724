package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jason-s-yu/lobbyfinder/internal/lobby"
)

// EventLog persists lobby events for later inspection.
type EventLog struct {
	pool *pgxpool.Pool
}

// NewEventLog returns a Postgres-backed event log.
func NewEventLog(pool *pgxpool.Pool) *EventLog {
	return &EventLog{pool: pool}
}

// SaveEvents inserts a batch in one transaction. Events already stored
// (same id) are skipped, so a batch may be retried.
func (e *EventLog) SaveEvents(ctx context.Context, events []lobby.Event) error {
	q := `
	INSERT INTO lobby_events (id, type, action, lobby_id, actor_id, lobby, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO NOTHING
	`
	return pgx.BeginTxFunc(ctx, e.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, ev := range events {
			var snapshot []byte
			if ev.Lobby != nil {
				var err error
				if snapshot, err = json.Marshal(ev.Lobby); err != nil {
					return fmt.Errorf("encode lobby of event %s: %w", ev.ID, err)
				}
			}
			_, err := tx.Exec(ctx, q,
				ev.ID, ev.Type, ev.Action, ev.LobbyID, ev.ActorID, snapshot,
				time.UnixMilli(ev.Timestamp).UTC(),
			)
			if err != nil {
				return fmt.Errorf("insert event %s: %w", ev.ID, err)
			}
		}
		return nil
	})
}

// LobbyHistory returns the stored events of one lobby, oldest first.
func (e *EventLog) LobbyHistory(ctx context.Context, lobbyID int64) ([]lobby.Event, error) {
	rows, err := e.pool.Query(ctx, `
		SELECT id, type, action, lobby_id, actor_id, occurred_at
		  FROM lobby_events
		 WHERE lobby_id = $1
		 ORDER BY occurred_at, id`, lobbyID)
	if err != nil {
		return nil, fmt.Errorf("query lobby events: %w", err)
	}
	defer rows.Close()

	events := []lobby.Event{}
	for rows.Next() {
		var (
			ev lobby.Event
			at time.Time
		)
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.Action, &ev.LobbyID, &ev.ActorID, &at); err != nil {
			return nil, fmt.Errorf("scan lobby event: %w", err)
		}
		ev.Timestamp = at.UnixMilli()
		events = append(events, ev)
	}
	return events, rows.Err()
}
