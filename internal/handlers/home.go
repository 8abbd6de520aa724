package handlers

import "net/http"

// HomeHandler describes the service and lists its top-level resources.
func HomeHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"name":    "lobbyfinder",
			"version": version,
			"resources": []string{
				"/games",
				"/platforms",
				"/distributors",
				"/game-ranks",
				"/lobbies",
				"/lobbies/cards",
				"/lobbies/ws",
				"/session/guest",
			},
		})
	}
}
