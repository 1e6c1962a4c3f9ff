package storage

import (
	"context"
	"time"

	"github.com/iudanet/fantasy11/pkg/api"
)

// LeaderboardSnapshot is the last leaderboard page fetched for a contest.
type LeaderboardSnapshot struct {
	FetchedAt time.Time
	ContestID string
	Board     api.LeaderboardResponse
	Skip      int
	Limit     int
}

// ContestSnapshot is the last known copy of a contest.
type ContestSnapshot struct {
	FetchedAt time.Time
	Contest   api.Contest
}

// Cache keeps the latest server responses for offline viewing.
// It never participates in authorization decisions.
type Cache interface {
	// SaveLeaderboard overwrites the snapshot for (contest, skip, limit)
	SaveLeaderboard(ctx context.Context, snap *LeaderboardSnapshot) error

	// GetLeaderboard returns ErrNotFound if nothing was cached
	GetLeaderboard(ctx context.Context, contestID string, skip, limit int) (*LeaderboardSnapshot, error)

	// SaveContest overwrites the cached contest
	SaveContest(ctx context.Context, snap *ContestSnapshot) error

	// GetContest returns ErrNotFound if nothing was cached
	GetContest(ctx context.Context, contestID string) (*ContestSnapshot, error)

	// Clear drops everything; called on explicit logout and on a new login
	// since leaderboards carry the current user's entry
	Clear(ctx context.Context) error
}
