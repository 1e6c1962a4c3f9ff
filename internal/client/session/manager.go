// Package session owns the authenticated identity of the client: tokens in
// durable and ephemeral storage, the cached user profile and the
// login/register/logout/refresh transitions between them.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	clientapi "github.com/iudanet/fantasy11/internal/client/api"
	"github.com/iudanet/fantasy11/internal/client/storage"
	"github.com/iudanet/fantasy11/internal/validation"
	pkgapi "github.com/iudanet/fantasy11/pkg/api"
)

// ErrSessionEnded is returned by Refresh and by authorized requests whose
// session could not be renewed. The local session is already torn down.
var ErrSessionEnded = &clientapi.AuthError{Message: "Your session has expired. Please log in again."}

// Compile-time check that Manager can authorize API requests
var _ clientapi.TokenSource = (*Manager)(nil)

// Manager управляет сессией пользователя
type Manager struct {
	api       API
	durable   storage.KV
	ephemeral storage.KV
	nav       Navigator
	metrics   Metrics
	logger    *slog.Logger
	now       func() time.Time
	subs      map[int]func(Snapshot)

	group singleflight.Group

	accessToken string
	snap        Snapshot
	refreshSkew time.Duration
	nextSub     int
	mu          sync.RWMutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithNavigator sets the receiver of navigation signals.
func WithNavigator(n Navigator) Option {
	return func(m *Manager) { m.nav = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics sets the lifecycle observer.
func WithMetrics(mt Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithRefreshSkew makes AccessToken refresh a token that expires within d.
// Zero disables proactive refresh; expiry is then only detected by a 401.
func WithRefreshSkew(d time.Duration) Option {
	return func(m *Manager) { m.refreshSkew = d }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager создает менеджер сессии. Состояние начинается с StateUnknown до вызова Init.
func NewManager(api API, durable, ephemeral storage.KV, opts ...Option) *Manager {
	m := &Manager{
		api:       api,
		durable:   durable,
		ephemeral: ephemeral,
		metrics:   nopMetrics{},
		logger:    slog.Default(),
		now:       time.Now,
		subs:      make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetNavigator attaches the receiver of navigation signals. The route gate
// observes the manager, so it can only be attached after construction.
func (m *Manager) SetNavigator(n Navigator) {
	m.mu.Lock()
	m.nav = n
	m.mu.Unlock()
}

// Snapshot returns the current session.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// State returns the current authentication state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.State
}

// Subscribe registers fn to be called after every change of the session.
// fn runs on the goroutine that caused the change and must not block.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Init restores the session saved by a previous run. The cached user is
// published before any network call; it is then revalidated with
// GET /api/users/me. A failed revalidation is logged and the cached user kept:
// an expired token is handled by the regular refresh path of that request.
func (m *Manager) Init(ctx context.Context) error {
	m.mu.Lock()
	if m.snap.State != StateUnknown {
		m.mu.Unlock()
		return nil
	}
	m.snap.State = StateLoading
	m.mu.Unlock()
	m.publish()

	user, token, err := m.loadCached(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.WarnContext(ctx, "failed to restore session", slog.Any("error", err))
		}
		m.setAnonymous()
		return nil
	}

	persistence := SessionOnly
	if _, err := m.durable.Get(ctx, storage.KeyRefreshToken); err == nil {
		persistence = Remembered
	}

	m.mu.Lock()
	m.accessToken = token
	m.snap = Snapshot{
		State:        StateAuthenticated,
		Verification: CachedUnverified,
		User:         user,
		Persistence:  persistence,
		ExpiresAt:    m.expiresAt(token),
	}
	m.mu.Unlock()
	m.publish()

	fresh, err := m.api.Me(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "failed to revalidate cached user", slog.Any("error", err))
		return nil
	}

	m.mu.Lock()
	if m.snap.State != StateAuthenticated {
		m.mu.Unlock()
		return nil
	}
	m.snap.User = fresh
	m.snap.Verification = Verified
	m.mu.Unlock()

	if err := m.cacheUser(ctx, fresh); err != nil {
		m.logger.WarnContext(ctx, "failed to cache user", slog.Any("error", err))
	}
	m.publish()
	return nil
}

func (m *Manager) loadCached(ctx context.Context) (*pkgapi.User, string, error) {
	raw, err := m.durable.Get(ctx, storage.KeyUser)
	if err != nil {
		return nil, "", err
	}
	token, err := m.durable.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		return nil, "", err
	}

	var user pkgapi.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, "", fmt.Errorf("failed to decode cached user: %w", err)
	}
	return &user, token, nil
}

// Login выполняет вход. Refresh token попадает в durable хранилище только при rememberMe.
func (m *Manager) Login(ctx context.Context, form validation.LoginForm, rememberMe bool) (*pkgapi.User, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	resp, err := m.api.Login(ctx, pkgapi.LoginRequest{
		Username: form.Username,
		Password: form.Password,
	})
	if err != nil {
		return nil, err
	}

	persistence := SessionOnly
	if rememberMe {
		persistence = Remembered
	}
	return m.establish(ctx, resp, persistence)
}

// Register создает аккаунт и сразу входит в него. Refresh token всегда сохраняется надолго.
func (m *Manager) Register(ctx context.Context, form validation.RegisterForm, avatar *pkgapi.Upload) (*pkgapi.User, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	resp, err := m.api.Register(ctx, pkgapi.RegisterRequest{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		FullName: form.FullName,
		Mobile:   form.Mobile,
		Avatar:   avatar,
	})
	if err != nil {
		return nil, err
	}

	return m.establish(ctx, resp, Remembered)
}

// establish stores a fresh token pair, loads the profile and signals /home.
func (m *Manager) establish(ctx context.Context, tokens *pkgapi.TokenResponse, persistence Persistence) (*pkgapi.User, error) {
	if err := m.storeTokens(ctx, tokens, persistence); err != nil {
		m.clearLocal(ctx)
		return nil, err
	}

	m.mu.Lock()
	m.accessToken = tokens.AccessToken
	m.mu.Unlock()

	user, err := m.api.Me(ctx)
	if err != nil {
		m.clearLocal(ctx)
		m.setAnonymous()
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := m.cacheUser(ctx, user); err != nil {
		m.logger.WarnContext(ctx, "failed to cache user", slog.Any("error", err))
	}

	m.mu.Lock()
	m.snap = Snapshot{
		State:        StateAuthenticated,
		Verification: Verified,
		User:         user,
		Persistence:  persistence,
		ExpiresAt:    m.expiresAt(tokens.AccessToken),
	}
	m.mu.Unlock()
	m.publish()

	m.logger.InfoContext(ctx, "session started",
		slog.String("username", user.Username),
		slog.String("persistence", persistence.String()),
	)
	m.navigate(HomePath)
	return user, nil
}

func (m *Manager) storeTokens(ctx context.Context, tokens *pkgapi.TokenResponse, persistence Persistence) error {
	if err := m.durable.Set(ctx, storage.KeyAccessToken, tokens.AccessToken); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}

	keep, drop := m.durable, m.ephemeral
	if persistence == SessionOnly {
		keep, drop = m.ephemeral, m.durable
	}
	if err := keep.Set(ctx, storage.KeyRefreshToken, tokens.RefreshToken); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	// Старый refresh token другого режима не должен пережить новый вход
	if err := drop.Delete(ctx, storage.KeyRefreshToken); err != nil {
		return fmt.Errorf("failed to drop previous refresh token: %w", err)
	}
	return nil
}

func (m *Manager) cacheUser(ctx context.Context, user *pkgapi.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return m.durable.Set(ctx, storage.KeyUser, string(data))
}

// UpdateProfile changes the display fields and re-caches the user.
func (m *Manager) UpdateProfile(ctx context.Context, upd pkgapi.ProfileUpdate) (*pkgapi.User, error) {
	user, err := m.api.UpdateProfile(ctx, upd)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.snap.State == StateAuthenticated {
		m.snap.User = user
		m.snap.Verification = Verified
	}
	m.mu.Unlock()

	if err := m.cacheUser(ctx, user); err != nil {
		m.logger.WarnContext(ctx, "failed to cache user", slog.Any("error", err))
	}
	m.publish()
	return user, nil
}

// Logout ends the session. Server-side revocation is best effort; local
// state is always cleared and the login screen is signalled.
func (m *Manager) Logout(ctx context.Context) error {
	if token, _, err := m.refreshToken(ctx); err == nil {
		if err := m.api.Logout(ctx, token); err != nil {
			// Не прерываем выход, если сервер недоступен
			m.logger.WarnContext(ctx, "failed to revoke refresh token", slog.Any("error", err))
		}
	}

	m.clearLocal(ctx)
	m.setAnonymous()
	m.logger.InfoContext(ctx, "session ended")
	m.navigate(LoginPath)
	return nil
}

// clearLocal удаляет все ключи сессии. Ошибки хранилища только логируются:
// выход не должен зависеть от состояния диска.
func (m *Manager) clearLocal(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	errs := []error{
		m.durable.Delete(ctx, storage.KeyAccessToken),
		m.durable.Delete(ctx, storage.KeyRefreshToken),
		m.durable.Delete(ctx, storage.KeyUser),
		m.ephemeral.Delete(ctx, storage.KeyRefreshToken),
	}
	if err := errors.Join(errs...); err != nil {
		m.logger.WarnContext(ctx, "failed to clear session storage", slog.Any("error", err))
	}
}

func (m *Manager) setAnonymous() {
	m.mu.Lock()
	m.accessToken = ""
	m.snap = Snapshot{State: StateAnonymous}
	m.mu.Unlock()
	m.publish()
}

// refreshToken reads the refresh token, durable storage first.
func (m *Manager) refreshToken(ctx context.Context) (token string, durable bool, err error) {
	token, err = m.durable.Get(ctx, storage.KeyRefreshToken)
	if err == nil && token != "" {
		return token, true, nil
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", false, fmt.Errorf("failed to read refresh token: %w", err)
	}

	token, err = m.ephemeral.Get(ctx, storage.KeyRefreshToken)
	if err != nil {
		return "", false, err
	}
	if token == "" {
		return "", false, storage.ErrNotFound
	}
	return token, false, nil
}

// Refresh exchanges the refresh token for a new pair. Any failure, including
// a missing token, logs the user out and returns ErrSessionEnded.
// Concurrent calls share one request.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.renew(ctx, "")
}

// Renew refreshes the session after the server rejected the given access
// token. If another caller already replaced that token it returns at once.
func (m *Manager) Renew(ctx context.Context, rejected string) error {
	m.mu.RLock()
	current := m.accessToken
	m.mu.RUnlock()

	if current == "" {
		return ErrSessionEnded
	}
	if current != rejected {
		return nil
	}
	return m.renew(ctx, rejected)
}

func (m *Manager) renew(ctx context.Context, rejected string) error {
	// Общий refresh не должен отменяться вместе с контекстом первого вызывающего
	shared := context.WithoutCancel(ctx)
	ch := m.group.DoChan("refresh", func() (any, error) {
		if rejected != "" {
			m.mu.RLock()
			current := m.accessToken
			m.mu.RUnlock()
			if current != "" && current != rejected {
				return nil, nil
			}
		}
		return nil, m.refresh(shared)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (m *Manager) refresh(ctx context.Context) error {
	token, durable, err := m.refreshToken(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "no refresh token, ending session", slog.Any("error", err))
		return m.endSession(ctx)
	}

	resp, err := m.api.Refresh(ctx, token)
	if err != nil {
		m.logger.WarnContext(ctx, "token refresh failed, ending session", slog.Any("error", err))
		return m.endSession(ctx)
	}

	if err := m.durable.Set(ctx, storage.KeyAccessToken, resp.AccessToken); err != nil {
		m.logger.WarnContext(ctx, "failed to save refreshed access token", slog.Any("error", err))
		return m.endSession(ctx)
	}
	if resp.RefreshToken != "" {
		// Новый refresh token кладём туда же, где лежал старый
		target := m.ephemeral
		if durable {
			target = m.durable
		}
		if err := target.Set(ctx, storage.KeyRefreshToken, resp.RefreshToken); err != nil {
			m.logger.WarnContext(ctx, "failed to save refreshed refresh token", slog.Any("error", err))
			return m.endSession(ctx)
		}
	}

	m.mu.Lock()
	m.accessToken = resp.AccessToken
	m.snap.ExpiresAt = m.expiresAt(resp.AccessToken)
	m.mu.Unlock()
	m.publish()

	m.metrics.RefreshCompleted(true)
	m.logger.DebugContext(ctx, "access token refreshed", slog.Bool("durable", durable))
	return nil
}

func (m *Manager) endSession(ctx context.Context) error {
	m.metrics.RefreshCompleted(false)
	_ = m.Logout(ctx)
	return ErrSessionEnded
}

// AccessToken returns the bearer token for API requests, or "" when
// anonymous. A token about to expire is refreshed first; if that fails the
// session is over and "" is returned.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	token := m.accessToken
	exp := m.snap.ExpiresAt
	m.mu.RUnlock()

	if token == "" || m.refreshSkew <= 0 || exp.IsZero() || m.now().Add(m.refreshSkew).Before(exp) {
		return token, nil
	}

	if err := m.renew(ctx, token); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accessToken, nil
}

func (m *Manager) expiresAt(token string) time.Time {
	exp, err := ExpiresAt(token)
	if err != nil {
		m.logger.Debug("access token is not a JWT", slog.Any("error", err))
		return time.Time{}
	}
	return exp
}

func (m *Manager) publish() {
	m.mu.RLock()
	snap := m.snap
	subs := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.RUnlock()

	m.metrics.StateChanged(snap.State.String())
	for _, fn := range subs {
		fn(snap)
	}
}

func (m *Manager) navigate(path string) {
	m.mu.RLock()
	nav := m.nav
	m.mu.RUnlock()

	if nav != nil {
		nav.Navigate(path)
	}
}
