package auth

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

func newTestTokenService(t *testing.T, accessDuration time.Duration) *TokenService {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	svc, err := NewTokenService(key, accessDuration, 30*24*time.Hour)
	require.NoError(t, err)
	return svc
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := newTestTokenService(t, 15*time.Minute)

	user := &domain.User{
		ID:        "user-001",
		Email:     "alice@example.com",
		Role:      domain.RoleAdmin,
		IsPremium: true,
	}

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-001", claims.UserID)
	assert.Equal(t, string(domain.RoleAdmin), claims.Role)
	assert.True(t, claims.IsPremium)

	principal := claims.Principal()
	assert.True(t, principal.IsAdmin())
	assert.Equal(t, "user-001", principal.ID)
}

func TestAccessToken_Expired(t *testing.T) {
	svc := newTestTokenService(t, -time.Minute)

	token, err := svc.GenerateAccessToken(&domain.User{ID: "user-001", Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestAccessToken_WrongKey(t *testing.T) {
	svc := newTestTokenService(t, 15*time.Minute)
	other := newTestTokenService(t, 15*time.Minute)

	token, err := svc.GenerateAccessToken(&domain.User{ID: "user-001", Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestRefreshToken_Hashing(t *testing.T) {
	svc := newTestTokenService(t, 15*time.Minute)

	token, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	other, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	// Hashing is deterministic and distinct per token
	assert.Equal(t, HashRefreshToken(token), HashRefreshToken(token))
	assert.NotEqual(t, HashRefreshToken(token), HashRefreshToken(other))
}

func TestHashPassword_Verify(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	ok, err := VerifyPassword(hash, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong password")
	require.NoError(t, err)
	assert.False(t, ok)
}
