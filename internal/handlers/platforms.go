package handlers

import (
	"net/http"

	"github.com/jason-s-yu/lobbyfinder/internal/catalog"
)

func ListPlatformsHandler(cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := cat.ListPlatforms(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ps)
	}
}

func GetPlatformHandler(cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		p, err := cat.GetPlatform(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func ListPlatformGamesHandler(cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if _, err := cat.GetPlatform(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		games, err := cat.ListGames(r.Context(), catalog.GameFilter{PlatformID: id})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, games)
	}
}
