package handlers

import (
	"context"
	"net/http"

	"github.com/jason-s-yu/lobbyfinder/internal/lobby"
)

// LobbyHistory reads the persisted events of one lobby.
type LobbyHistory interface {
	LobbyHistory(ctx context.Context, lobbyID int64) ([]lobby.Event, error)
}

// LobbyHistoryHandler lists what happened to a lobby, oldest first. Deleted
// lobbies keep their history, so an unknown id answers an empty list.
func LobbyHistoryHandler(history LobbyHistory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		events, err := history.LobbyHistory(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}
