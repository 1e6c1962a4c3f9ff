package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/fantasy11/internal/models"
	"github.com/iudanet/fantasy11/internal/server/storage"
	"github.com/iudanet/fantasy11/internal/sqlitedb"
)

const userColumns = `id, username, email, password_hash, full_name, mobile, avatar_url, is_admin, created_at, updated_at`

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Mobile,
		user.AvatarURL,
		user.IsAdmin,
		toMillis(user.CreatedAt),
		toMillis(user.UpdatedAt),
	)

	if err != nil {
		// Занят username или email
		if sqlitedb.IsUniqueViolation(err) {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByUsername retrieves user by username
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "username", username)
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.getUser(ctx, "id", userID)
}

// GetUserByMobile retrieves user by mobile number
func (s *Storage) GetUserByMobile(ctx context.Context, mobile string) (*models.User, error) {
	if mobile == "" {
		return nil, storage.ErrUserNotFound
	}
	return s.getUser(ctx, "mobile", mobile)
}

// getUser ищет пользователя по одной колонке; column задаётся только кодом
func (s *Storage) getUser(ctx context.Context, column, value string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ? LIMIT 1`

	var (
		user                 models.User
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Mobile,
		&user.AvatarURL,
		&user.IsAdmin,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return &user, nil
}

// UpdateUser updates profile fields and the password hash
func (s *Storage) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = ?, password_hash = ?, full_name = ?, mobile = ?, avatar_url = ?, is_admin = ?, updated_at = ?
		WHERE id = ?
	`

	n, err := s.affected(ctx, query,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Mobile,
		user.AvatarURL,
		user.IsAdmin,
		toMillis(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		if sqlitedb.IsUniqueViolation(err) {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

// SaveAvatar stores the profile picture, replacing an older one
func (s *Storage) SaveAvatar(ctx context.Context, avatar *models.Avatar) error {
	query := `INSERT OR REPLACE INTO avatars (user_id, content_type, data) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, avatar.UserID, avatar.ContentType, avatar.Data); err != nil {
		return fmt.Errorf("failed to save avatar: %w", err)
	}
	return nil
}

// GetAvatar returns the uploaded profile picture
func (s *Storage) GetAvatar(ctx context.Context, userID string) (*models.Avatar, error) {
	avatar := &models.Avatar{UserID: userID}
	err := s.db.QueryRowContext(ctx,
		`SELECT content_type, data FROM avatars WHERE user_id = ?`, userID,
	).Scan(&avatar.ContentType, &avatar.Data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAvatarNotFound
		}
		return nil, fmt.Errorf("failed to get avatar: %w", err)
	}
	return avatar, nil
}
