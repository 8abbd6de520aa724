package handlers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/lobbyfinder/internal/lobby"
	"github.com/jason-s-yu/lobbyfinder/internal/lobbycard"
)

// LobbyServer holds what the lobby handlers share: the lobby service, each
// viewer's mounted lobby cards and the live event feed.
type LobbyServer struct {
	Service *lobby.Service
	Decks   *lobbycard.Decks
	Feed    *lobby.Feed
	Logger  *logrus.Logger

	// Now is the clock card ages are rendered against.
	Now func() time.Time
}

// NewLobbyServer wires the lobby handlers' dependencies.
func NewLobbyServer(svc *lobby.Service, decks *lobbycard.Decks, feed *lobby.Feed, logger *logrus.Logger) *LobbyServer {
	return &LobbyServer{
		Service: svc,
		Decks:   decks,
		Feed:    feed,
		Logger:  logger,
		Now:     time.Now,
	}
}

// DeckSync keeps every viewer's mounted cards current with lobby events.
// Register it as a lobby.Publisher.
type DeckSync struct {
	Decks *lobbycard.Decks
}

// Publish refreshes mounted cards, or unmounts them when their lobby is gone.
// Viewers without the card mounted are left alone.
func (d DeckSync) Publish(_ context.Context, ev lobby.Event) error {
	if ev.Type == lobby.EventDeleted {
		d.Decks.Unmount(ev.LobbyID)
		return nil
	}
	if ev.Lobby != nil {
		d.Decks.Refresh(ev.Lobby)
	}
	return nil
}
