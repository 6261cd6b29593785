package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intecsystems/nda-survey/internal/models"
	"github.com/intecsystems/nda-survey/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo := storage.NewMemoryRepository()
	hash, err := models.HashPassword("s3cret")
	require.NoError(t, err)
	repo.AddAdmin(&models.AdminUser{ID: 1, Username: "admin", PasswordHash: hash, IsActive: true})
	repo.AddAdmin(&models.AdminUser{ID: 2, Username: "locked", PasswordHash: hash, IsActive: false})

	return NewService(repo, NewMemorySessionStore(), "test-secret", time.Hour)
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("valid credentials issue a verifiable token", func(t *testing.T) {
		token, err := svc.Login(ctx, "admin", "s3cret")
		require.NoError(t, err)
		require.NotEmpty(t, token.Value)
		assert.True(t, token.ExpiresAt.After(time.Now()))

		username, err := svc.Verify(ctx, token.Value)
		require.NoError(t, err)
		assert.Equal(t, "admin", username)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, "admin", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user is rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost", "s3cret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive user is rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, "locked", "s3cret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestVerify(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := svc.Verify(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		other := newTestService(t)
		otherToken, err := other.Login(ctx, "admin", "s3cret")
		require.NoError(t, err)

		foreign := NewService(storage.NewMemoryRepository(), NewMemorySessionStore(), "different-secret", time.Hour)
		_, err = foreign.Verify(ctx, otherToken.Value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestLogout(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, token.Value)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token.Value))

	_, err = svc.Verify(ctx, token.Value)
	assert.ErrorIs(t, err, ErrInvalidToken, "revoked token must not verify")

	// logging out twice is harmless
	assert.NoError(t, svc.Logout(ctx, token.Value))
	assert.NoError(t, svc.Logout(ctx, "not-a-jwt"))
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sid", "admin", -time.Second))
	active, err := store.IsActive(ctx, "sid")
	require.NoError(t, err)
	assert.False(t, active, "expired session must be inactive")
}
