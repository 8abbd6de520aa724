package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jason-s-yu/lobbyfinder/internal/auth"
	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

// AuthCookieName is the cookie carrying the session token.
const AuthCookieName = "auth_token"

type userCtxKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFrom returns the session user stored by the session middleware.
func UserFrom(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(models.User)
	return u, ok
}

// TokenFromRequest reads the session token from the auth cookie, falling
// back to an "Authorization: Bearer" header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AuthCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// OptionalSession attaches the session user to the request context when a
// valid token is present. Requests without one pass through untouched.
func OptionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := TokenFromRequest(r); token != "" {
			if u, err := auth.AuthenticateJWT(token); err == nil {
				r = r.WithContext(WithUser(r.Context(), u))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSession rejects requests without a valid session with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			unauthorized(w, "missing session token")
			return
		}
		u, err := auth.AuthenticateJWT(token)
		if err != nil {
			unauthorized(w, "invalid or expired session token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
