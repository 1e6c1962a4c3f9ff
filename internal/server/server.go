// Package server is the local development API of fantasy11: the same
// endpoints the CLI talks to, backed by SQLite.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iudanet/fantasy11/internal/config"
	"github.com/iudanet/fantasy11/internal/server/handlers"
	"github.com/iudanet/fantasy11/internal/server/middleware"
	"github.com/iudanet/fantasy11/internal/server/seed"
	"github.com/iudanet/fantasy11/internal/server/storage"
	"github.com/iudanet/fantasy11/internal/server/storage/sqlite"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second

	// loginRateLimit строже общего лимита /api/auth: подбор пароля
	loginRateLimit = 10
	rateWindow     = time.Minute
)

// Server wires storage, handlers and middleware into an http.Handler.
type Server struct {
	store       storage.Storage
	logger      *slog.Logger
	cfg         *config.DevServer
	handler     http.Handler
	stopLimiter func()
}

// New opens the database, loads demo data when cfg.Seed is set and
// builds the router.
func New(ctx context.Context, cfg *config.DevServer, logger *slog.Logger, version string) (*Server, error) {
	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	if cfg.Seed {
		if err := seed.Demo(ctx, store, cfg.BcryptCost, logger); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to load demo data: %w", err)
		}
	}

	s := &Server{store: store, logger: logger, cfg: cfg}
	s.handler, s.stopLimiter = s.routes(version)
	return s, nil
}

func (s *Server) routes(version string) (http.Handler, func()) {
	jwtCfg := handlers.JWTConfig{
		Secret:          []byte(s.cfg.JWTSecret),
		AccessTokenTTL:  s.cfg.AccessTTL,
		RefreshTokenTTL: s.cfg.RefreshTTL,
	}

	scorer := handlers.NewScorer(s.store, s.store, s.store, s.store)
	authH := handlers.NewAuthHandler(s.logger, s.store, s.store, jwtCfg, s.cfg.BcryptCost)
	userH := handlers.NewUserHandler(s.logger, s.store)
	contestH := handlers.NewContestHandler(s.logger, s.store, s.store, s.store, scorer)
	teamH := handlers.NewTeamHandler(s.logger, s.store, s.store, scorer)
	healthH := handlers.NewHealthHandler(s.logger, s.store, version)

	required := middleware.AuthMiddleware(s.logger, jwtCfg)
	optional := middleware.OptionalAuthMiddleware(s.logger, jwtCfg)
	protect := func(h http.HandlerFunc) http.Handler { return required(h) }
	maybe := func(h http.HandlerFunc) http.Handler { return optional(h) }

	rateLimit, stop := middleware.RateLimitMiddleware(s.logger,
		middleware.RateRule{Limit: s.cfg.AuthRateLimit, Window: rateWindow},
		middleware.RateRule{Path: "/api/auth/login", Limit: loginRateLimit, Window: rateWindow},
	)

	r := mux.NewRouter()
	r.Use(middleware.Recoverer(s.logger))
	r.Use(middleware.RequestLogger(s.logger, "/api/health"))

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", healthH.Health).Methods(http.MethodGet)

	auth := api.PathPrefix("/auth").Subrouter()
	auth.Use(rateLimit)
	auth.HandleFunc("/register", authH.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", authH.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh", authH.Refresh).Methods(http.MethodPost)
	auth.HandleFunc("/logout", authH.Logout).Methods(http.MethodPost)
	auth.HandleFunc("/reset-password-mobile", authH.ResetPasswordByMobile).Methods(http.MethodPost)

	api.Handle("/users/me", protect(userH.Me)).Methods(http.MethodGet)
	api.Handle("/users/me", protect(userH.UpdateMe)).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}/avatar", userH.Avatar).Methods(http.MethodGet)

	// enrollments/me объявлен раньше /contests/{id}
	api.Handle("/contests/enrollments/me", protect(contestH.MyEnrollments)).Methods(http.MethodGet)
	api.Handle("/contests", maybe(contestH.List)).Methods(http.MethodGet)
	api.Handle("/contests/{id}", maybe(contestH.Get)).Methods(http.MethodGet)
	api.Handle("/contests/{id}/leaderboard", maybe(contestH.Leaderboard)).Methods(http.MethodGet)
	api.Handle("/contests/{id}/enroll", protect(contestH.Enroll)).Methods(http.MethodPost)
	api.Handle("/contests/{id}/teams/{teamId}", maybe(contestH.ContestTeam)).Methods(http.MethodGet)

	api.Handle("/teams/", protect(teamH.Create)).Methods(http.MethodPost)
	api.Handle("/teams/", protect(teamH.List)).Methods(http.MethodGet)
	api.Handle("/teams/{id}", protect(teamH.Get)).Methods(http.MethodGet)
	api.Handle("/teams/{id}", protect(teamH.Update)).Methods(http.MethodPut)
	api.Handle("/teams/{id}", protect(teamH.Delete)).Methods(http.MethodDelete)
	api.Handle("/teams/{id}/rename", protect(teamH.Rename)).Methods(http.MethodPatch)

	notFound := jsonStatus(http.StatusNotFound)
	notAllowed := jsonStatus(http.StatusMethodNotAllowed)
	// subrouter'ы не наследуют обработчики родителя
	for _, router := range []*mux.Router{r, api, auth} {
		router.NotFoundHandler = notFound
		router.MethodNotAllowedHandler = notAllowed
	}

	return r, stop
}

// jsonStatus answers with a bare {"detail": ...} body for router-level errors.
func jsonStatus(code int) http.Handler {
	body := []byte(`{"detail":"` + http.StatusText(code) + `"}`)
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = w.Write(body)
	})
}

// Handler returns the root handler, useful with httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Store returns the underlying storage.
func (s *Server) Store() storage.Storage {
	return s.store
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go s.cleanupTokens(ctx)

	errC := make(chan error, 1)
	go func() {
		s.logger.Info("dev server listening", slog.String("addr", ln.Addr().String()))
		errC <- srv.Serve(ln)
	}()

	select {
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down dev server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// cleanupTokens периодически удаляет просроченные refresh токены
func (s *Server) cleanupTokens(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		n, err := s.store.DeleteExpiredTokens(ctx)
		if err != nil {
			s.logger.Warn("failed to delete expired tokens", slog.Any("error", err))
			continue
		}
		if n > 0 {
			s.logger.Debug("expired tokens deleted", slog.Int("count", n))
		}
	}
}

// Close stops background work and closes the database.
func (s *Server) Close() error {
	if s.stopLimiter != nil {
		s.stopLimiter()
	}
	return s.store.Close()
}
