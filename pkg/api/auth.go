package api

import "encoding/json"

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest представляет регистрационную форму.
// На сервер уходит как multipart/form-data, не JSON.
type RegisterRequest struct {
	Avatar   *Upload `json:"-"` // необязательный аватар
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"full_name,omitempty"`
	Mobile   string  `json:"mobile,omitempty"`
}

// Upload describes a file attached to a multipart request.
type Upload struct {
	Filename string
	Data     []byte
}

// TokenResponse представляет ответ с токенами доступа
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

// User is the profile returned by GET /api/users/me.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name,omitempty"`
	Mobile    string `json:"mobile,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
}

// DisplayName returns the full name when set, username otherwise.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// ProfileUpdate holds the optional fields of PUT /api/users/me.
type ProfileUpdate struct {
	FullName  string
	AvatarURL string
}

// ResetPasswordRequest представляет запрос на сброс пароля по номеру телефона
type ResetPasswordRequest struct {
	Mobile      string `json:"mobile"`
	NewPassword string `json:"new_password"`
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse представляет ответ с ошибкой.
// FastAPI кладёт описание в detail, который бывает строкой или списком ошибок валидации.
type ErrorResponse struct {
	Detail  json.RawMessage `json:"detail,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Text returns the most specific human readable message in the body, or "".
func (e ErrorResponse) Text() string {
	if len(e.Detail) > 0 {
		var s string
		if err := json.Unmarshal(e.Detail, &s); err == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(e.Detail, &items); err == nil && len(items) > 0 && items[0].Msg != "" {
			return items[0].Msg
		}
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}
