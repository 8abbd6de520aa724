package handlers

import (
	"net/http"

	"github.com/jason-s-yu/lobbyfinder/internal/catalog"
)

func ListDistributorsHandler(cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := cat.ListDistributors(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ds)
	}
}

func GetDistributorHandler(cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		d, err := cat.GetDistributor(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

// ListDistributorGamesHandler lists the games a distributor publishes. An
// unknown distributor is a 404, not an empty list.
func ListDistributorGamesHandler(cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if _, err := cat.GetDistributor(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		games, err := cat.ListGames(r.Context(), catalog.GameFilter{DistributorID: id})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, games)
	}
}
