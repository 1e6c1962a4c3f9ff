package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/fantasy11/internal/models"
	"github.com/iudanet/fantasy11/internal/server/storage"
	"github.com/iudanet/fantasy11/internal/validation"
	"github.com/iudanet/fantasy11/pkg/api"
)

// MaxAvatarSize ограничивает размер загружаемого аватара
const MaxAvatarSize = 2 << 20

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	responder
	userStorage  storage.UserStorage
	tokenStorage storage.TokenStorage
	jwtConfig    JWTConfig
	bcryptCost   int
}

// NewAuthHandler создает новый handler для авторизации.
// bcryptCost <= 0 означает bcrypt.DefaultCost
func NewAuthHandler(logger *slog.Logger, userStorage storage.UserStorage, tokenStorage storage.TokenStorage, jwtConfig JWTConfig, bcryptCost int) *AuthHandler {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		responder:    responder{logger: logger},
		userStorage:  userStorage,
		tokenStorage: tokenStorage,
		jwtConfig:    jwtConfig,
		bcryptCost:   bcryptCost,
	}
}

// HashPassword хеширует пароль с заданной стоимостью bcrypt
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Register обрабатывает POST /api/auth/register
// Поля приходят как multipart form, аватар - необязательный файл "avatar"
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(MaxAvatarSize); err != nil {
		h.logger.WarnContext(ctx, "failed to parse register form", slog.Any("error", err))
		h.sendError(w, "invalid form data", http.StatusBadRequest)
		return
	}

	form := validation.RegisterForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		FullName: strings.TrimSpace(r.FormValue("full_name")),
		Mobile:   strings.TrimSpace(r.FormValue("mobile")),
	}
	form.ConfirmPassword = form.Password
	if err := form.Validate(); err != nil {
		h.logger.WarnContext(ctx, "invalid registration", slog.String("username", form.Username), slog.Any("error", err))
		h.sendValidationError(w, err)
		return
	}

	avatar, err := readAvatar(r)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := HashPassword(form.Password, h.bcryptCost)
	if err != nil {
		h.internalError(w, r, "failed to hash password", err)
		return
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: hash,
		FullName:     form.FullName,
		Mobile:       form.Mobile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if avatar != nil {
		user.AvatarURL = "/api/users/" + user.ID + "/avatar"
	}

	if err := h.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.sendError(w, "Username or email already registered", http.StatusBadRequest)
			return
		}
		h.internalError(w, r, "failed to create user", err)
		return
	}

	if avatar != nil {
		avatar.UserID = user.ID
		if err := h.userStorage.SaveAvatar(ctx, avatar); err != nil {
			h.internalError(w, r, "failed to save avatar", err)
			return
		}
	}

	h.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID), slog.String("username", user.Username))

	h.issueTokens(w, r, user, http.StatusCreated)
}

// readAvatar читает необязательный файл аватара; nil если файла нет
func readAvatar(r *http.Request) (*models.Avatar, error) {
	file, _, err := r.FormFile("avatar")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid avatar upload")
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(file, MaxAvatarSize+1))
	if err != nil {
		return nil, fmt.Errorf("invalid avatar upload")
	}
	if len(data) > MaxAvatarSize {
		return nil, fmt.Errorf("avatar must not exceed %d bytes", MaxAvatarSize)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("avatar must be an image")
	}
	return &models.Avatar{ContentType: contentType, Data: data}, nil
}

// Login обрабатывает POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	form := validation.LoginForm{Username: req.Username, Password: req.Password}
	if err := form.Validate(); err != nil {
		h.sendValidationError(w, err)
		return
	}

	user, err := h.userStorage.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login attempt for unknown user", slog.String("username", req.Username))
			h.sendError(w, "Incorrect username or password", http.StatusUnauthorized)
			return
		}
		h.internalError(w, r, "failed to get user", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.WarnContext(ctx, "invalid password", slog.String("username", req.Username))
		h.sendError(w, "Incorrect username or password", http.StatusUnauthorized)
		return
	}

	h.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	h.issueTokens(w, r, user, http.StatusOK)
}

// Refresh обрабатывает POST /api/auth/refresh?refresh_token=...
// Старый refresh token отзывается, выдается новая пара
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.URL.Query().Get("refresh_token")
	if token == "" {
		h.sendError(w, "refresh_token is required", http.StatusBadRequest)
		return
	}

	stored, err := h.tokenStorage.GetRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.sendError(w, "Invalid refresh token", http.StatusUnauthorized)
			return
		}
		h.internalError(w, r, "failed to get refresh token", err)
		return
	}

	// Токен одноразовый: удаляем до выдачи новой пары
	if err := h.tokenStorage.DeleteRefreshToken(ctx, token); err != nil && !errors.Is(err, storage.ErrTokenNotFound) {
		h.internalError(w, r, "failed to revoke refresh token", err)
		return
	}

	if stored.Expired(time.Now()) {
		h.sendError(w, "Refresh token expired", http.StatusUnauthorized)
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, "Invalid refresh token", http.StatusUnauthorized)
			return
		}
		h.internalError(w, r, "failed to get user", err)
		return
	}

	h.issueTokens(w, r, user, http.StatusOK)
}

// Logout обрабатывает POST /api/auth/logout?refresh_token=...
// Неизвестный токен не ошибка: клиент всё равно завершает сессию
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.URL.Query().Get("refresh_token")
	if token != "" {
		if err := h.tokenStorage.DeleteRefreshToken(ctx, token); err != nil && !errors.Is(err, storage.ErrTokenNotFound) {
			h.internalError(w, r, "failed to revoke refresh token", err)
			return
		}
	}

	h.sendJSON(w, api.MessageResponse{Message: "Successfully logged out"}, http.StatusOK)
}

// ResetPasswordByMobile обрабатывает POST /api/auth/reset-password-mobile
// Все refresh токены пользователя отзываются
func (h *AuthHandler) ResetPasswordByMobile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	form := validation.ResetPasswordForm{Mobile: req.Mobile, Password: req.NewPassword, ConfirmPassword: req.NewPassword}
	if err := form.Validate(); err != nil {
		h.sendValidationError(w, err)
		return
	}

	user, err := h.userStorage.GetUserByMobile(ctx, req.Mobile)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, "No account is registered with this mobile number", http.StatusNotFound)
			return
		}
		h.internalError(w, r, "failed to get user", err)
		return
	}

	hash, err := HashPassword(req.NewPassword, h.bcryptCost)
	if err != nil {
		h.internalError(w, r, "failed to hash password", err)
		return
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now()
	if err := h.userStorage.UpdateUser(ctx, user); err != nil {
		h.internalError(w, r, "failed to update password", err)
		return
	}

	revoked, err := h.tokenStorage.DeleteUserTokens(ctx, user.ID)
	if err != nil {
		h.internalError(w, r, "failed to revoke tokens", err)
		return
	}
	h.logger.InfoContext(ctx, "password reset", slog.String("user_id", user.ID), slog.Int("revoked_tokens", revoked))

	h.sendJSON(w, api.MessageResponse{Message: "Password has been reset. Please log in."}, http.StatusOK)
}

// issueTokens выдает access и refresh токены и сохраняет refresh token
func (h *AuthHandler) issueTokens(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	ctx := r.Context()

	accessToken, _, err := GenerateAccessToken(h.jwtConfig, user.ID, user.Username)
	if err != nil {
		h.internalError(w, r, "failed to generate access token", err)
		return
	}

	refreshToken, expiresAt, err := GenerateRefreshToken(h.jwtConfig)
	if err != nil {
		h.internalError(w, r, "failed to generate refresh token", err)
		return
	}

	err = h.tokenStorage.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	})
	if err != nil {
		h.internalError(w, r, "failed to save refresh token", err)
		return
	}

	h.sendJSON(w, api.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, status)
}
