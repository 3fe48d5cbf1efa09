package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/chumash/internal/config"
)

func newTestTokens(expiry time.Duration) *TokenService {
	return NewTokenService(config.Auth{Mode: config.AuthModeJWT, JWTSecret: "super-secret", TokenExpiry: expiry})
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	tokens := newTestTokens(time.Hour)

	tok, err := tokens.Issue("user-123")
	require.NoError(t, err)

	userID, err := tokens.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestTokenService_Expired(t *testing.T) {
	tokens := newTestTokens(time.Hour)
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := tokens.Issue("u1")
	require.NoError(t, err)

	_, err = tokens.Validate(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_NonPositiveExpiryUsesDefault(t *testing.T) {
	tokens := newTestTokens(-time.Second)

	tok, err := tokens.Issue("u1")
	require.NoError(t, err)

	userID, err := tokens.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestTokenService_WrongSecret(t *testing.T) {
	tok, err := newTestTokens(time.Hour).Issue("u1")
	require.NoError(t, err)

	other := NewTokenService(config.Auth{JWTSecret: "other", TokenExpiry: time.Hour})
	_, err = other.Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1"})
	tok, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestTokens(time.Hour).Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_MissingUserID(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{})
	tok, err := token.SignedString([]byte("super-secret"))
	require.NoError(t, err)

	_, err = newTestTokens(time.Hour).Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_NoSecret(t *testing.T) {
	tokens := NewTokenService(config.Auth{})

	_, err := tokens.Issue("u1")
	assert.ErrorIs(t, err, ErrNoSecret)
	_, err = tokens.Validate("x")
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestNewUserID(t *testing.T) {
	a, b := NewUserID(), NewUserID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
