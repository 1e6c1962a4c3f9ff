package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fantasy11/internal/models"
	"github.com/iudanet/fantasy11/internal/sqlitedb"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	s, err := New(context.Background(), sqlitedb.Memory)
	require.NoError(t, err)
	return s, func() { _ = s.Close() }
}

func createTestUser(t *testing.T, ctx context.Context, s *Storage) string {
	userID := uuid.New().String()
	now := time.Now()
	user := &models.User{
		ID:           userID,
		Username:     "testuser_" + userID[:8],
		Email:        userID[:8] + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.CreateUser(ctx, user)
	require.NoError(t, err)

	return userID
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}
