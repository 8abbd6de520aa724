package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jason-s-yu/lobbyfinder/internal/lobby"
	"github.com/jason-s-yu/lobbyfinder/internal/lobbycard"
	"github.com/jason-s-yu/lobbyfinder/internal/middleware"
	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

// ViewerCookieName identifies an anonymous browser's card deck.
const ViewerCookieName = "lobby_viewer"

// viewerDeck returns the deck of the requesting viewer: the session user
// when signed in, otherwise the browser carrying the viewer cookie. A new
// viewer cookie is issued when none is present.
func (ls *LobbyServer) viewerDeck(w http.ResponseWriter, r *http.Request) *lobbycard.Deck {
	if u, ok := middleware.UserFrom(r.Context()); ok {
		return ls.Decks.For("user:" + u.ID.String())
	}
	if c, err := r.Cookie(ViewerCookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return ls.Decks.For("anon:" + id.String())
		}
	}
	id := uuid.New()
	http.SetCookie(w, &http.Cookie{
		Name:     ViewerCookieName,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return ls.Decks.For("anon:" + id.String())
}

// LobbyCardsHandler renders the filtered lobby listing as HTML cards.
// Cards stay mounted in the viewer's deck between requests so a failed game
// icon is not requested again by that viewer.
func LobbyCardsHandler(ls *LobbyServer) http.HandlerFunc {
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
		views := lobbycard.Render(ls.viewerDeck(w, r).Sync(lobbies), ls.Now())

		var buf bytes.Buffer
		if err := lobbycard.WriteHTML(&buf, views); err != nil {
			writeError(w, r, fmt.Errorf("render lobby cards: %w", err))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	}
}

// LobbyCardHandler returns the card view of one lobby as JSON, or as an HTML
// fragment when the client asks for text/html.
func LobbyCardHandler(ls *LobbyServer) http.HandlerFunc {
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
		view := ls.viewerDeck(w, r).Update(l).Render(ls.Now())

		if strings.Contains(r.Header.Get("Accept"), "text/html") {
			var buf bytes.Buffer
			if err := lobbycard.WriteCardHTML(&buf, view); err != nil {
				writeError(w, r, fmt.Errorf("render lobby card: %w", err))
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = buf.WriteTo(w)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

type editTarget struct {
	Lobby  *models.Lobby `json:"lobby"`
	Method string        `json:"method"`
	URL    string        `json:"url"`
}

// LobbyCardActionHandler runs a card interaction: join, edit, delete, or
// icon-error reported by the card's image. icon-error only changes the
// reporting viewer's deck.
func LobbyCardActionHandler(ls *LobbyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		action := chi.URLParam(r, "action")

		if action == "icon-error" {
			deck := ls.viewerDeck(w, r)
			if !deck.MarkIconFailed(id) {
				l, err := ls.Service.Get(r.Context(), id)
				if err != nil {
					writeError(w, r, err)
					return
				}
				deck.Update(l).IconFailed()
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		user, err := sessionUser(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		l, err := ls.Service.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := r.Context()
		var (
			intentErr error
			result    *models.Lobby
			edit      bool
			deleted   bool
		)
		card := lobbycard.New(l, lobbycard.IntentFuncs{
			Join: func(id int64) {
				result, intentErr = ls.Service.Join(ctx, id, user, r.FormValue("passcode"))
			},
			Edit: func(id int64) {
				if l.Owner.ID != user.ID {
					intentErr = fmt.Errorf("edit lobby %d: %w", id, lobby.ErrNotOwner)
					return
				}
				edit = true
			},
			Delete: func(id int64) {
				intentErr = ls.Service.Delete(ctx, id, user)
				deleted = intentErr == nil
			},
		})

		switch action {
		case "join":
			if err := card.Join(); err != nil {
				writeError(w, r, err)
				return
			}
		case "edit":
			card.Edit()
		case "delete":
			card.Delete()
		default:
			writeError(w, r, fmt.Errorf("%w: unknown card action %q", errBadRequest, action))
			return
		}
		if intentErr != nil {
			writeError(w, r, intentErr)
			return
		}

		switch {
		case isFormPost(r):
			http.Redirect(w, r, "/lobbies/cards", http.StatusSeeOther)
		case deleted:
			w.WriteHeader(http.StatusNoContent)
		case edit:
			writeJSON(w, http.StatusOK, editTarget{
				Lobby:  l,
				Method: http.MethodPatch,
				URL:    fmt.Sprintf("/lobbies/%d", l.ID),
			})
		default:
			writeJSON(w, http.StatusOK, ls.viewerDeck(w, r).Update(result).Render(ls.Now()))
		}
	}
}

func isFormPost(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}
