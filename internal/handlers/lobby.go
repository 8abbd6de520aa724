// internal/handlers/lobby.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jason-s-yu/lobbyfinder/internal/lobby"
	"github.com/jason-s-yu/lobbyfinder/internal/middleware"
	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

const maxListLimit = 200

// lobbyFilter reads ?game= ?status= ?region= ?mode= ?type= ?joinable=true
// and ?limit= from the query string.
func lobbyFilter(r *http.Request) (lobby.Filter, error) {
	q := r.URL.Query()
	f := lobby.Filter{
		Region: q.Get("region"),
		Mode:   q.Get("mode"),
	}

	var err error
	if f.GameID, err = queryID(r, "game"); err != nil {
		return f, err
	}

	if s := q.Get("status"); s != "" {
		switch st := models.LobbyStatus(s); st {
		case models.StatusWaiting, models.StatusInGame, models.StatusFull:
			f.Status = st
		default:
			return f, fmt.Errorf("%w: unknown status %q", errBadRequest, s)
		}
	}

	if t := q.Get("type"); t != "" {
		f.Type = models.LobbyType(t)
		if !f.Type.Valid() {
			return f, fmt.Errorf("%w: unknown lobby type %q", errBadRequest, t)
		}
	}

	if j := q.Get("joinable"); j != "" {
		if f.JoinableOnly, err = strconv.ParseBool(j); err != nil {
			return f, fmt.Errorf("%w: invalid joinable %q", errBadRequest, j)
		}
	}

	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 || n > maxListLimit {
			return f, fmt.Errorf("%w: limit must be between 1 and %d", errBadRequest, maxListLimit)
		}
		f.Limit = n
	}
	return f, nil
}

func sessionUser(r *http.Request) (models.User, error) {
	u, ok := middleware.UserFrom(r.Context())
	if !ok {
		return models.User{}, errUnauthorized
	}
	return u, nil
}

// ListLobbiesHandler lists lobbies, newest first.
func ListLobbiesHandler(ls *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := lobbyFilter(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		lobbies, err := ls.Service.List(r.Context(), f)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, lobbies)
	}
}

func GetLobbyHandler(ls *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		l, err := ls.Service.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

// CreateLobbyHandler hosts a lobby owned by the session user.
func CreateLobbyHandler(ls *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := sessionUser(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req lobby.CreateRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			writeError(w, r, err)
			return
		}
		l, err := ls.Service.Create(r.Context(), user, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Location", fmt.Sprintf("/lobbies/%d", l.ID))
		writeJSON(w, http.StatusCreated, l)
	}
}

// UpdateLobbyHandler applies a partial update. Owner only.
func UpdateLobbyHandler(ls *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := sessionUser(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req lobby.UpdateRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			writeError(w, r, err)
			return
		}
		l, err := ls.Service.Update(r.Context(), id, user, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

// DeleteLobbyHandler removes a lobby. Owner only.
func DeleteLobbyHandler(ls *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := sessionUser(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := ls.Service.Delete(r.Context(), id, user); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type joinRequest struct {
	Passcode string `json:"passcode"`
}

// JoinLobbyHandler seats the session user. Private lobbies need
// {"passcode": "..."}.
func JoinLobbyHandler(ls *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := sessionUser(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req joinRequest
		if err := decodeJSON(w, r, &req, true); err != nil {
			writeError(w, r, err)
			return
		}
		l, err := ls.Service.Join(r.Context(), id, user, req.Passcode)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

// LeaveLobbyHandler frees the session user's seat.
func LeaveLobbyHandler(ls *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := sessionUser(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		l, err := ls.Service.Leave(r.Context(), id, user)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}
