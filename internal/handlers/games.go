package handlers

import (
	"net/http"
	"strings"

	"github.com/jason-s-yu/lobbyfinder/internal/catalog"
)

// ListGamesHandler lists catalog games, filtered by ?platform=, ?distributor=
// and a name search ?q=.
func ListGamesHandler(cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		platformID, err := queryID(r, "platform")
		if err != nil {
			writeError(w, r, err)
			return
		}
		distributorID, err := queryID(r, "distributor")
		if err != nil {
			writeError(w, r, err)
			return
		}
		games, err := cat.ListGames(r.Context(), catalog.GameFilter{
			PlatformID:    platformID,
			DistributorID: distributorID,
			Query:         strings.TrimSpace(r.URL.Query().Get("q")),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, games)
	}
}

// GetGameHandler returns one game by {gameID}.
func GetGameHandler(cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "gameID")
		if err != nil {
			writeError(w, r, err)
			return
		}
		g, err := cat.GetGame(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}
