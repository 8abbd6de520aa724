package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

func TestJWTRoundTrip(t *testing.T) {
	require.NoError(t, Init(time.Hour))
	u := models.User{ID: uuid.New(), Username: "jett", Avatar: "https://cdn.example/jett.png"}

	token, err := CreateJWT(u)
	require.NoError(t, err)

	got, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestJWTRejectsForeignKey(t *testing.T) {
	require.NoError(t, Init(0))
	token, err := CreateJWT(models.User{ID: uuid.New(), Username: "reyna"})
	require.NoError(t, err)

	// rotate keys, the old token must stop verifying
	require.NoError(t, Init(0))
	_, err = AuthenticateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsExpired(t *testing.T) {
	require.NoError(t, Init(time.Hour))
	claims := jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(-time.Minute).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(privateKey)
	require.NoError(t, err)

	_, err = AuthenticateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsGarbage(t *testing.T) {
	require.NoError(t, Init(0))
	_, err := AuthenticateJWT("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasscode(t *testing.T) {
	hash, err := HashPasscode("hunter2")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := ComparePasscode("hunter2", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ComparePasscode("hunter3", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ComparePasscode("hunter2", "plain")
	assert.ErrorIs(t, err, ErrInvalidHash)
}
