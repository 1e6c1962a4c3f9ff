package storage

import (
	"context"

	"github.com/iudanet/fantasy11/internal/models"
)

// UserStorage keeps accounts and their profile pictures.
// Lookups fail with ErrUserNotFound when there is no such account.
type UserStorage interface {
	// CreateUser fails with ErrUserAlreadyExists when the username or
	// email is already taken.
	CreateUser(ctx context.Context, user *models.User) error

	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUserByMobile backs the password reset flow.
	GetUserByMobile(ctx context.Context, mobile string) (*models.User, error)

	// UpdateUser rewrites the profile and the password hash.
	UpdateUser(ctx context.Context, user *models.User) error

	// SaveAvatar replaces a previously uploaded picture.
	SaveAvatar(ctx context.Context, avatar *models.Avatar) error
	// GetAvatar fails with ErrAvatarNotFound when nothing was uploaded.
	GetAvatar(ctx context.Context, userID string) (*models.Avatar, error)
}
