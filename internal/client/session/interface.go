package session

import (
	"context"

	pkgapi "github.com/iudanet/fantasy11/pkg/api"
)

// API is the part of the platform API the session manager talks to.
// *api.Client implements it.
type API interface {
	// Login обменивает учётные данные на пару токенов
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error)

	// Register создаёт аккаунт и сразу выдаёт пару токенов
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.TokenResponse, error)

	// Refresh обменивает refresh token на новую пару
	Refresh(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error)

	// Logout отзывает refresh token на сервере
	Logout(ctx context.Context, refreshToken string) error

	// Me возвращает профиль по текущему access token
	Me(ctx context.Context) (*pkgapi.User, error)

	// UpdateProfile меняет отображаемые поля профиля
	UpdateProfile(ctx context.Context, upd pkgapi.ProfileUpdate) (*pkgapi.User, error)
}

// Navigator receives the navigation signals of login, register and logout.
type Navigator interface {
	Navigate(path string)
}

// Metrics observes session lifecycle events.
type Metrics interface {
	RefreshCompleted(ok bool)
	StateChanged(state string)
}

type nopMetrics struct{}

func (nopMetrics) RefreshCompleted(bool) {}
func (nopMetrics) StateChanged(string)   {}
