package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/fantasy11/internal/crypto"
	"github.com/iudanet/fantasy11/internal/models"
	"github.com/iudanet/fantasy11/internal/server/storage"
)

// affected выполняет запрос и возвращает число затронутых строк
func (s *Storage) affected(ctx context.Context, query string, args ...any) (int, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

// SaveRefreshToken writes the hash of token.Token, never the value.
func (s *Storage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	hash, err := crypto.HashToken(token.Token)
	if err != nil {
		return fmt.Errorf("failed to hash refresh token: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO refresh_tokens (token_hash, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		hash, token.UserID, toMillis(token.ExpiresAt), toMillis(token.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

func (s *Storage) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	hash, err := crypto.HashToken(token)
	if err != nil {
		return nil, storage.ErrTokenNotFound
	}

	rt := &models.RefreshToken{Token: token}
	var expiresAt, createdAt int64
	err = s.db.QueryRowContext(ctx,
		`SELECT user_id, expires_at, created_at FROM refresh_tokens WHERE token_hash = ?`, hash,
	).Scan(&rt.UserID, &expiresAt, &createdAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, storage.ErrTokenNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	rt.ExpiresAt = fromMillis(expiresAt)
	rt.CreatedAt = fromMillis(createdAt)
	return rt, nil
}

func (s *Storage) DeleteRefreshToken(ctx context.Context, token string) error {
	hash, err := crypto.HashToken(token)
	if err != nil {
		return storage.ErrTokenNotFound
	}
	n, err := s.affected(ctx, `DELETE FROM refresh_tokens WHERE token_hash = ?`, hash)
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	if n == 0 {
		return storage.ErrTokenNotFound
	}
	return nil
}

func (s *Storage) DeleteUserTokens(ctx context.Context, userID string) (int, error) {
	n, err := s.affected(ctx, `DELETE FROM refresh_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tokens of %s: %w", userID, err)
	}
	return n, nil
}

func (s *Storage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	n, err := s.affected(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= ?`, toMillis(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return n, nil
}
