package handlers

import (
	"net/http"

	"github.com/jason-s-yu/lobbyfinder/internal/catalog"
	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

// GameRankLadder is one game's ranks in tier order.
type GameRankLadder struct {
	GameID int64             `json:"gameId"`
	Ranks  []models.GameRank `json:"ranks"`
}

// ListAllGameRanksHandler returns every ladder, grouped by game.
func ListAllGameRanksHandler(cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ranks, err := cat.ListAllGameRanks(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		// ranks arrive ordered by game, then tier
		ladders := []GameRankLadder{}
		for _, rk := range ranks {
			if n := len(ladders); n == 0 || ladders[n-1].GameID != rk.GameID {
				ladders = append(ladders, GameRankLadder{GameID: rk.GameID})
			}
			last := &ladders[len(ladders)-1]
			last.Ranks = append(last.Ranks, rk)
		}
		writeJSON(w, http.StatusOK, ladders)
	}
}

// ListGameRanksHandler returns the ladder of {gameID}, weakest tier first.
func ListGameRanksHandler(cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "gameID")
		if err != nil {
			writeError(w, r, err)
			return
		}
		ranks, err := cat.ListGameRanks(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ranks)
	}
}
