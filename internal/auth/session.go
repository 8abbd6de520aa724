// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

// ErrInvalidToken is returned for any token that does not verify.
var ErrInvalidToken = errors.New("invalid session token")

// privateKey and publicKey are used for signing and verifying session tokens.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// tokenTTL is how long a session token lives (0 => never expires).
	tokenTTL time.Duration
)

// Init generates a fresh ed25519 key pair at runtime and sets the token
// lifetime. Tokens issued before a restart stop verifying.
func Init(ttl time.Duration) error {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("generate ed25519 key pair: %w", err)
	}
	publicKey, privateKey = pub, priv
	tokenTTL = ttl
	return nil
}

// TokenTTL returns the configured session lifetime.
func TokenTTL() time.Duration {
	return tokenTTL
}

// CreateJWT signs a session token carrying the user's id, name and avatar.
func CreateJWT(u models.User) (string, error) {
	if privateKey == nil {
		return "", errors.New("auth not initialized")
	}
	claims := jwt.MapClaims{
		"sub":      u.ID.String(),
		"username": u.Username,
		"iat":      time.Now().Unix(),
	}
	if u.Avatar != "" {
		claims["avatar"] = u.Avatar
	}
	if tokenTTL > 0 {
		claims["exp"] = time.Now().Add(tokenTTL).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// AuthenticateJWT verifies a token string and returns the user it names.
func AuthenticateJWT(tokenString string) (models.User, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !t.Valid {
		return models.User{}, ErrInvalidToken
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return models.User{}, fmt.Errorf("%w: unexpected claims", ErrInvalidToken)
	}
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: bad sub %q", ErrInvalidToken, sub)
	}
	username, _ := claims["username"].(string)
	avatar, _ := claims["avatar"].(string)

	return models.User{ID: id, Username: username, Avatar: avatar}, nil
}
