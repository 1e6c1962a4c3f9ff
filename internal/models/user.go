package models

import "time"

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time `json:"created_at"`    // время создания
	UpdatedAt    time.Time `json:"updated_at"`    // время последнего обновления
	ID           string    `json:"id"`            // UUID пользователя
	Username     string    `json:"username"`      // уникальный username
	Email        string    `json:"email"`         // уникальный email
	PasswordHash string    `json:"password_hash"` // bcrypt хеш пароля
	FullName     string    `json:"full_name"`
	Mobile       string    `json:"mobile"`
	AvatarURL    string    `json:"avatar_url"`
	IsAdmin      bool      `json:"is_admin"`
}

// RefreshToken представляет refresh token пользователя
type RefreshToken struct {
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	CreatedAt time.Time `json:"created_at"` // время создания
	Token     string    `json:"token"`      // случайное значение, выданное клиенту
	UserID    string    `json:"user_id"`    // ID пользователя
}

// Expired reports whether the token is past its expiry at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Avatar is an uploaded profile picture.
type Avatar struct {
	UserID      string
	ContentType string
	Data        []byte
}
