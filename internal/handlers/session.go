package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jason-s-yu/lobbyfinder/internal/auth"
	"github.com/jason-s-yu/lobbyfinder/internal/middleware"
	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

const maxUsernameLength = 32

var errUnauthorized = errors.New("session required")

type guestRequest struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type sessionResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token,omitempty"`
}

// EnsureGuestUser returns the user of a valid session token, or creates a
// new guest identity and sets its auth_token cookie.
func EnsureGuestUser(w http.ResponseWriter, r *http.Request, req guestRequest) (models.User, string, error) {
	if token := middleware.TokenFromRequest(r); token != "" {
		if u, err := auth.AuthenticateJWT(token); err == nil {
			return u, token, nil
		}
	}

	guest := models.User{
		ID:       uuid.New(),
		Username: strings.TrimSpace(req.Username),
		Avatar:   strings.TrimSpace(req.Avatar),
	}
	if guest.Username == "" {
		guest.Username = "Guest-" + guest.ID.String()[:4]
	}
	if utf8.RuneCountInString(guest.Username) > maxUsernameLength {
		return models.User{}, "", fmt.Errorf("%w: username is longer than %d characters", errBadRequest, maxUsernameLength)
	}

	token, err := auth.CreateJWT(guest)
	if err != nil {
		return models.User{}, "", fmt.Errorf("failed to create guest JWT: %w", err)
	}
	cookie := &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
	if ttl := auth.TokenTTL(); ttl > 0 {
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
	return guest, token, nil
}

// GuestSessionHandler starts (or resumes) a guest session. The body may name
// the guest: {"username": "...", "avatar": "..."}.
func GuestSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req guestRequest
		if err := decodeJSON(w, r, &req, true); err != nil {
			writeError(w, r, err)
			return
		}
		u, token, err := EnsureGuestUser(w, r, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{User: u, Token: token})
	}
}

// MeHandler returns the session user. Mount behind middleware.RequireSession.
func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middleware.UserFrom(r.Context())
		if !ok {
			writeError(w, r, errUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{User: u})
	}
}
