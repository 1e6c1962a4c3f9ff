package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fantasy11/internal/models"
	"github.com/iudanet/fantasy11/internal/server/storage"
)

func TestTokenStorage_SaveRefreshToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)

	tests := []struct {
		name  string
		token *models.RefreshToken
	}{
		{
			name: "save new refresh token",
			token: &models.RefreshToken{
				Token:     "token123",
				UserID:    userID,
				ExpiresAt: time.Now().Add(24 * time.Hour),
				CreatedAt: time.Now(),
			},
		},
		{
			name: "replace existing token with same value",
			token: &models.RefreshToken{
				Token:     "token123",
				UserID:    userID,
				ExpiresAt: time.Now().Add(48 * time.Hour),
				CreatedAt: time.Now(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.SaveRefreshToken(ctx, tt.token))

			got, err := s.GetRefreshToken(ctx, tt.token.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.token.UserID, got.UserID)
			assert.Equal(t, tt.token.ExpiresAt.UnixMilli(), got.ExpiresAt.UnixMilli())
		})
	}
}

func TestTokenStorage_GetRefreshToken_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetRefreshToken(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
}

func TestTokenStorage_DeleteRefreshToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     "to-delete",
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}))

	require.NoError(t, s.DeleteRefreshToken(ctx, "to-delete"))
	assert.ErrorIs(t, s.DeleteRefreshToken(ctx, "to-delete"), storage.ErrTokenNotFound)

	_, err := s.GetRefreshToken(ctx, "to-delete")
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
}

func TestTokenStorage_DeleteUserTokens(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	otherID := createTestUser(t, ctx, s)

	for _, tok := range []string{"a", "b", "c"} {
		require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
			Token: tok, UserID: userID, ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
		}))
	}
	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token: "other", UserID: otherID, ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
	}))

	n, err := s.DeleteUserTokens(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = s.GetRefreshToken(ctx, "other")
	assert.NoError(t, err)
}

func TestTokenStorage_DeleteExpiredTokens(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token: "expired", UserID: userID, ExpiresAt: time.Now().Add(-time.Hour), CreatedAt: time.Now().Add(-2 * time.Hour),
	}))
	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token: "valid", UserID: userID, ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
	}))

	n, err := s.DeleteExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.GetRefreshToken(ctx, "expired")
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
	_, err = s.GetRefreshToken(ctx, "valid")
	assert.NoError(t, err)
}

func TestTokenStorage_StoresOnlyHash(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     "plain-refresh-token",
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}))

	var stored string
	require.NoError(t, s.DB().QueryRowContext(ctx, `SELECT token_hash FROM refresh_tokens`).Scan(&stored))
	assert.NotEqual(t, "plain-refresh-token", stored)
	assert.Len(t, stored, 64)

	got, err := s.GetRefreshToken(ctx, "plain-refresh-token")
	require.NoError(t, err)
	assert.Equal(t, "plain-refresh-token", got.Token)

	_, err = s.GetRefreshToken(ctx, "")
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
}
