package lobby

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

// EventType names what happened to a lobby.
type EventType string

const (
	EventCreated EventType = "lobby_created"
	EventUpdated EventType = "lobby_updated"
	EventDeleted EventType = "lobby_deleted"
)

// Event is published after every successful lobby mutation. Lobby is the
// state after the change and is nil for deletions.
type Event struct {
	ID        uuid.UUID     `json:"id"`
	Type      EventType     `json:"type"`
	Action    string        `json:"action"` // create, join, leave, edit, delete
	LobbyID   int64         `json:"lobbyId"`
	Lobby     *models.Lobby `json:"lobby,omitempty"`
	ActorID   uuid.UUID     `json:"actorId"`
	Timestamp int64         `json:"timestamp"` // epoch millis
}

func newEvent(typ EventType, action string, lobbyID int64, l *models.Lobby, actor uuid.UUID, at time.Time) Event {
	return Event{
		ID:        uuid.New(),
		Type:      typ,
		Action:    action,
		LobbyID:   lobbyID,
		Lobby:     l,
		ActorID:   actor,
		Timestamp: at.UnixMilli(),
	}
}

// Publisher receives lobby events. Publish must not block for long; the
// service logs errors and carries on.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}
