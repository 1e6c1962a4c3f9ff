package storage

import (
	"context"

	"github.com/iudanet/fantasy11/internal/models"
)

// TokenStorage keeps issued refresh tokens. Implementations never store
// the raw token value, only its hash, so every lookup takes the value
// the client presented.
type TokenStorage interface {
	// SaveRefreshToken replaces an entry with the same value.
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error
	// GetRefreshToken fails with ErrTokenNotFound for unknown or revoked values.
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	// DeleteRefreshToken revokes one token; ErrTokenNotFound if it is already gone.
	DeleteRefreshToken(ctx context.Context, token string) error
	// DeleteUserTokens revokes every session of the user and reports how many there were.
	DeleteUserTokens(ctx context.Context, userID string) (int, error)
	// DeleteExpiredTokens purges tokens past their expiry and reports how many.
	DeleteExpiredTokens(ctx context.Context) (int, error)
}
