package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	clientapi "github.com/iudanet/fantasy11/internal/client/api"
	"github.com/iudanet/fantasy11/internal/client/storage"
	pkgapi "github.com/iudanet/fantasy11/pkg/api"
)

//go:generate moq -out api_mock.go . API

// API is the part of the platform API the leaderboard needs.
type API interface {
	GetContest(ctx context.Context, contestID string) (*pkgapi.Contest, error)
	Leaderboard(ctx context.Context, contestID string, params pkgapi.LeaderboardParams) (*pkgapi.LeaderboardResponse, error)
	ContestTeam(ctx context.Context, contestID, teamID string) (*pkgapi.ContestTeam, error)
}

// DefaultPageSize is the number of entries requested when the page has no limit.
const DefaultPageSize = 50

// Page selects a slice of the leaderboard.
type Page struct {
	Skip  int
	Limit int
}

// View is a contest with its normalized leaderboard.
type View struct {
	Contest pkgapi.Contest
	Board   Board
}

// Service loads leaderboards, falling back to the offline cache when the
// server cannot be reached.
type Service struct {
	api    API
	cache  storage.Cache // nil отключает офлайн кэш
	logger *slog.Logger
	now    func() time.Time
}

// NewService создает сервис лидерборда. cache может быть nil.
func NewService(api API, cache storage.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:    api,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// Load fetches the contest and one page of its leaderboard. On a network
// error the last cached copy is returned with Board.Stale set; other errors
// (including NotFound) are returned as is.
func (s *Service) Load(ctx context.Context, contestID string, page Page) (*View, error) {
	if page.Limit <= 0 {
		page.Limit = DefaultPageSize
	}
	if page.Skip < 0 {
		page.Skip = 0
	}

	contest, contestStale, err := s.contest(ctx, contestID)
	if err != nil {
		return nil, err
	}

	board, err := s.board(ctx, contestID, page)
	if err != nil {
		return nil, err
	}
	board.Stale = board.Stale || contestStale

	return &View{Contest: *contest, Board: board}, nil
}

func (s *Service) contest(ctx context.Context, contestID string) (*pkgapi.Contest, bool, error) {
	contest, err := s.api.GetContest(ctx, contestID)
	if err == nil {
		if verr := contest.Validate(); verr != nil {
			s.logger.WarnContext(ctx, "server returned inconsistent contest", slog.Any("error", verr))
		}
		if s.cache != nil {
			snap := &storage.ContestSnapshot{Contest: *contest, FetchedAt: s.now()}
			if cerr := s.cache.SaveContest(ctx, snap); cerr != nil {
				s.logger.WarnContext(ctx, "failed to cache contest", slog.Any("error", cerr))
			}
		}
		return contest, false, nil
	}

	if !clientapi.IsNetwork(err) || s.cache == nil {
		return nil, false, err
	}

	snap, cerr := s.cache.GetContest(ctx, contestID)
	if cerr != nil {
		if !errors.Is(cerr, storage.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to read cached contest", slog.Any("error", cerr))
		}
		return nil, false, err
	}
	s.logger.InfoContext(ctx, "serving cached contest", slog.String("contest_id", contestID))
	return &snap.Contest, true, nil
}

func (s *Service) board(ctx context.Context, contestID string, page Page) (Board, error) {
	resp, err := s.api.Leaderboard(ctx, contestID, pkgapi.LeaderboardParams{Skip: page.Skip, Limit: page.Limit})
	if err == nil {
		now := s.now()
		if s.cache != nil {
			snap := &storage.LeaderboardSnapshot{
				ContestID: contestID,
				Skip:      page.Skip,
				Limit:     page.Limit,
				Board:     *resp,
				FetchedAt: now,
			}
			if cerr := s.cache.SaveLeaderboard(ctx, snap); cerr != nil {
				s.logger.WarnContext(ctx, "failed to cache leaderboard", slog.Any("error", cerr))
			}
		}
		board := Normalize(*resp)
		board.FetchedAt = now
		return board, nil
	}

	if !clientapi.IsNetwork(err) || s.cache == nil {
		return Board{}, err
	}

	snap, cerr := s.cache.GetLeaderboard(ctx, contestID, page.Skip, page.Limit)
	if cerr != nil {
		if !errors.Is(cerr, storage.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to read cached leaderboard", slog.Any("error", cerr))
		}
		return Board{}, err
	}

	s.logger.InfoContext(ctx, "serving cached leaderboard",
		slog.String("contest_id", contestID),
		slog.Time("fetched_at", snap.FetchedAt),
	)
	board := Normalize(snap.Board)
	board.FetchedAt = snap.FetchedAt
	board.Stale = true
	return board, nil
}

// Team loads the lineup behind a leaderboard entry.
func (s *Service) Team(ctx context.Context, contest pkgapi.Contest, e Entry) (*pkgapi.ContestTeam, error) {
	if !CanViewTeam(contest, e) {
		return nil, fmt.Errorf("team of %s is not viewable while contest is %s", e.Username, contest.Status)
	}
	return s.api.ContestTeam(ctx, contest.ID, e.TeamID)
}
