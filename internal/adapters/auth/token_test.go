package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaoexevents/internal/domain"
)

func TestJWTManager_Issue(t *testing.T) {
	secret := "test-secret"
	mgr := NewJWTManager(secret)

	token, err := mgr.Issue("user-123", "u@example.com", domain.RoleAdmin, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestJWTManager_Verify(t *testing.T) {
	mgr := NewJWTManager("test-secret")

	t.Run("round trip", func(t *testing.T) {
		token, err := mgr.Issue("user-123", "u@example.com", domain.RoleMember, time.Hour)
		require.NoError(t, err)

		userID, role, err := mgr.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-123", userID)
		assert.Equal(t, domain.RoleMember, role)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other-secret")
		token, err := other.Issue("user-123", "u@example.com", domain.RoleMember, time.Hour)
		require.NoError(t, err)

		_, _, err = mgr.Verify(token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := mgr.Issue("user-123", "u@example.com", domain.RoleMember, -time.Minute)
		require.NoError(t, err)

		_, _, err = mgr.Verify(token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, _, err := mgr.Verify("not-a-token")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}
