package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/fantasy11/internal/client/api"
	"github.com/iudanet/fantasy11/internal/client/leaderboard"
)

type leaderboardFlags struct {
	metricsAddr string
	page        leaderboard.Page
	watch       bool
}

func newLeaderboardCmd(bind binder) *cobra.Command {
	var f leaderboardFlags
	cmd := &cobra.Command{
		Use:   "leaderboard <contest-id>",
		Short: "Show the standings of a contest",
		Long: `Show the podium, the full ranking table and your own position.

With --watch the board is reloaded every watch_interval until you press
Ctrl+C or the session ends. When the server is unreachable the last saved
standings are shown and marked as offline.`,
		Args: cobra.ExactArgs(1),
		RunE: bind(func(ctx context.Context, c *Cli, args []string) error {
			return c.runLeaderboard(ctx, args[0], f)
		}),
	}
	cmd.Flags().IntVar(&f.page.Skip, "skip", 0, "entries to skip")
	cmd.Flags().IntVar(&f.page.Limit, "limit", leaderboard.DefaultPageSize, "entries to show")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "keep refreshing the board")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while watching")

	cmd.AddCommand(&cobra.Command{
		Use:   "team <contest-id> <team-id>",
		Short: "Show the lineup of a team on the leaderboard",
		Args:  cobra.ExactArgs(2),
		RunE: bind(func(ctx context.Context, c *Cli, args []string) error {
			return c.runContestTeam(ctx, args[0], args[1])
		}),
	})
	return cmd
}

func (c *Cli) runLeaderboard(ctx context.Context, contestID string, f leaderboardFlags) error {
	viewCtx, ok, err := c.view(ctx, contestRoute(contestID, "leaderboard"))
	if !ok {
		return err
	}

	addr := f.metricsAddr
	if addr == "" {
		addr = c.cfg.MetricsAddr
	}
	if f.watch && addr != "" {
		stop, err := c.serveMetrics(addr)
		if err != nil {
			return err
		}
		defer stop()
	}

	if err := c.showLeaderboard(viewCtx, contestID, f.page); err != nil {
		return c.viewErr(ctx, err)
	}
	if !f.watch {
		return nil
	}

	ticker := time.NewTicker(c.cfg.WatchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-viewCtx.Done():
			return c.viewErr(ctx, viewCtx.Err())
		case <-ticker.C:
		}

		c.io.Printf("\n--- %s ---\n", time.Now().Format(time.TimeOnly))
		if err := c.showLeaderboard(viewCtx, contestID, f.page); err != nil {
			return c.viewErr(ctx, err)
		}
	}
}

func (c *Cli) showLeaderboard(ctx context.Context, contestID string, page leaderboard.Page) error {
	view, err := c.leaderboard.Load(ctx, contestID, page)
	if api.IsNotFound(err) {
		c.io.Printf("Contest %s was not found.\n", contestID)
		return nil
	}
	if err != nil {
		return err
	}
	c.metrics.LeaderboardLoaded(view.Board.Stale)

	title := fmt.Sprintf("%s (%s, %s)", view.Contest.Name, view.Contest.Code, view.Contest.Status)
	links := leaderboard.TeamsVisible(view.Contest)
	if err := leaderboard.Render(c.io, view.Board, leaderboard.RenderOptions{Title: title, TeamLinks: links}); err != nil {
		return fmt.Errorf("failed to render leaderboard: %w", err)
	}
	if links {
		c.io.Printf("\n* open a team with 'fantasy11 leaderboard team %s <team-id>'\n", contestID)
	}
	return nil
}

func (c *Cli) runContestTeam(ctx context.Context, contestID, teamID string) error {
	viewCtx, ok, err := c.view(ctx, contestRoute(contestID, "teams", teamID))
	if !ok {
		return err
	}

	contest, err := c.contests.Get(viewCtx, contestID)
	if err != nil {
		return c.viewErr(ctx, err)
	}
	if !leaderboard.TeamsVisible(*contest) {
		c.io.Printf("Teams of %s can be viewed once the contest is active.\n", contest.Name)
		return nil
	}
	team, err := c.leaderboard.Team(viewCtx, *contest, leaderboard.Entry{TeamID: teamID})
	if api.IsNotFound(err) {
		c.io.Printf("Team %s is not part of contest %s.\n", teamID, contestID)
		return nil
	}
	if err != nil {
		return c.viewErr(ctx, err)
	}
	return c.render(contestTeamTemplate, team)
}

// serveMetrics отдаёт /metrics, пока идёт --watch
func (c *Cli) serveMetrics(addr string) (stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", c.metrics.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	c.logger.Info("serving metrics", slog.String("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			c.logger.Warn("failed to stop metrics server", slog.Any("error", err))
		}
	}, nil
}
