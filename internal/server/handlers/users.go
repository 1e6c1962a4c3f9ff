package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/iudanet/fantasy11/internal/server/storage"
)

// UserHandler обслуживает профиль текущего пользователя
type UserHandler struct {
	responder
	userStorage storage.UserStorage
}

// NewUserHandler создает handler профиля
func NewUserHandler(logger *slog.Logger, userStorage storage.UserStorage) *UserHandler {
	return &UserHandler{responder: responder{logger: logger}, userStorage: userStorage}
}

// Me обрабатывает GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())

	user, err := h.userStorage.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Токен пережил пользователя
			h.sendError(w, "User not found", http.StatusUnauthorized)
			return
		}
		h.internalError(w, r, "failed to get user", err)
		return
	}

	h.sendJSON(w, userDTO(user), http.StatusOK)
}

// UpdateMe обрабатывает PUT /api/users/me?full_name=...&avatar_url=...
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := GetUserID(ctx)

	q := r.URL.Query()
	fullName, hasName := q.Get("full_name"), q.Has("full_name")
	avatarURL, hasAvatar := q.Get("avatar_url"), q.Has("avatar_url")
	if !hasName && !hasAvatar {
		h.sendError(w, "Nothing to update", http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, "User not found", http.StatusUnauthorized)
			return
		}
		h.internalError(w, r, "failed to get user", err)
		return
	}

	if hasName {
		user.FullName = strings.TrimSpace(fullName)
	}
	if hasAvatar {
		user.AvatarURL = strings.TrimSpace(avatarURL)
	}
	user.UpdatedAt = time.Now()

	if err := h.userStorage.UpdateUser(ctx, user); err != nil {
		h.internalError(w, r, "failed to update user", err)
		return
	}

	h.sendJSON(w, userDTO(user), http.StatusOK)
}

// Avatar обрабатывает GET /api/users/{id}/avatar
func (h *UserHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	avatar, err := h.userStorage.GetAvatar(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, storage.ErrAvatarNotFound) {
			h.sendError(w, "Avatar not found", http.StatusNotFound)
			return
		}
		h.internalError(w, r, "failed to get avatar", err)
		return
	}

	w.Header().Set("Content-Type", avatar.ContentType)
	w.Header().Set("Cache-Control", "max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(avatar.Data)
}
