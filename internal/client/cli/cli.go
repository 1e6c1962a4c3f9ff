// Package cli is the terminal front end of the client. Every command is a
// view bound to a route path; the route gate decides whether it may render.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/fantasy11/internal/client/api"
	"github.com/iudanet/fantasy11/internal/client/contests"
	"github.com/iudanet/fantasy11/internal/client/gate"
	"github.com/iudanet/fantasy11/internal/client/iocli"
	"github.com/iudanet/fantasy11/internal/client/leaderboard"
	"github.com/iudanet/fantasy11/internal/client/metrics"
	"github.com/iudanet/fantasy11/internal/client/session"
	"github.com/iudanet/fantasy11/internal/client/storage"
	"github.com/iudanet/fantasy11/internal/client/storage/boltdb"
	"github.com/iudanet/fantasy11/internal/client/storage/memory"
	"github.com/iudanet/fantasy11/internal/client/storage/sqlite"
	"github.com/iudanet/fantasy11/internal/client/teams"
	"github.com/iudanet/fantasy11/internal/config"
)

// Cli holds the wired client for the lifetime of the process.
type Cli struct {
	io          iocli.IO
	cfg         *config.Config
	logger      *slog.Logger
	apiClient   *api.Client
	session     *session.Manager
	gate        *gate.Gate
	contests    *contests.Service
	teams       *teams.Service
	leaderboard *leaderboard.Service
	metrics     *metrics.Manager
	cache       storage.Cache
	closers     []func() error
}

// Bootstrap opens the local stores, wires the API client, session manager,
// route gate and services, and restores the previous session.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *slog.Logger, io iocli.IO) (*Cli, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cli{
		io:      io,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewManager(),
	}

	durable, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	c.closers = append(c.closers, durable.Close)

	// Офлайн кэш необязателен: без него клиент просто не показывает старые данные
	if cfg.CachePath != "" {
		cache, err := sqlite.New(ctx, cfg.CachePath)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
		c.cache = cache
		c.closers = append(c.closers, cache.Close)
	}

	c.apiClient = api.NewClient(cfg.ServerURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger),
		api.WithRecorder(c.metrics),
	)

	c.session = session.NewManager(c.apiClient, durable, memory.New(),
		session.WithLogger(logger),
		session.WithMetrics(c.metrics),
		session.WithRefreshSkew(cfg.RefreshSkew),
	)
	c.apiClient.SetTokenSource(c.session)

	c.gate = gate.New(c.session, gate.WithLogger(logger))
	c.session.SetNavigator(c.gate)
	c.closers = append(c.closers, func() error {
		c.gate.Close()
		return nil
	})

	c.contests = contests.NewService(c.apiClient, cfg.PageSize, logger)
	c.teams = teams.NewService(c.apiClient, logger)
	c.leaderboard = leaderboard.NewService(c.apiClient, c.cache, logger)

	if err := c.session.Init(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	return c, nil
}

// Close releases the stores in reverse order of opening.
func (c *Cli) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Session exposes the session manager to the embedding program.
func (c *Cli) Session() *session.Manager {
	return c.session
}

// clearCache drops offline snapshots when the account on this device changes:
// leaderboards carry the current user's entry. An expired session keeps them.
func (c *Cli) clearCache(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Clear(ctx); err != nil {
		c.logger.Warn("failed to clear offline cache", slog.Any("error", err))
	}
}
