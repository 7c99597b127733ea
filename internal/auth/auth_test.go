package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookingsecret/internal/config"
	"cookingsecret/internal/domain"
)

func newManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(config.SecurityConfig{JWTSecret: "secret", TokenTTL: time.Hour})
	require.NoError(t, err)
	return m
}

func TestTokenRoundTrip(t *testing.T) {
	m := newManager(t)

	token, err := m.IssueToken("user-1")
	require.NoError(t, err)

	userID, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestExpiredToken(t *testing.T) {
	m := newManager(t)
	issued := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.IssueToken("user-1")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, domain.ErrExpiredToken)
}

func TestInvalidTokens(t *testing.T) {
	m := newManager(t)

	other, err := NewJWTManager(config.SecurityConfig{JWTSecret: "other", TokenTTL: time.Hour})
	require.NoError(t, err)
	foreign, err := other.IssueToken("user-1")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"none alg":     none,
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.ValidateToken(token)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	_, err := NewJWTManager(config.SecurityConfig{})
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	h := NewPasswordHasher(4)

	hash, err := h.Hash("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	ok, err := h.Verify("hunter2", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	again, err := h.Hash("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)

	_, err = h.Verify("hunter2", "not-a-hash")
	assert.Error(t, err)
}
