package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/fantasy11/internal/client/storage"
)

// Compile-time check that Storage implements storage.Cache
var _ storage.Cache = (*Storage)(nil)

// SaveLeaderboard stores the page as JSON, replacing an older copy
func (s *Storage) SaveLeaderboard(ctx context.Context, snap *storage.LeaderboardSnapshot) error {
	payload, err := json.Marshal(snap.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO leaderboard_snapshots (contest_id, skip, lim, payload, fetched_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, snap.ContestID, snap.Skip, snap.Limit, string(payload), snap.FetchedAt.UnixMilli()); err != nil {
		return fmt.Errorf("failed to save leaderboard snapshot: %w", err)
	}
	return nil
}

// GetLeaderboard returns the cached page for the contest
func (s *Storage) GetLeaderboard(ctx context.Context, contestID string, skip, limit int) (*storage.LeaderboardSnapshot, error) {
	query := `
		SELECT payload, fetched_at
		FROM leaderboard_snapshots
		WHERE contest_id = ? AND skip = ? AND lim = ?
	`

	var (
		payload   string
		fetchedAt int64
	)
	err := s.db.QueryRowContext(ctx, query, contestID, skip, limit).Scan(&payload, &fetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get leaderboard snapshot: %w", err)
	}

	snap := &storage.LeaderboardSnapshot{
		ContestID: contestID,
		Skip:      skip,
		Limit:     limit,
		FetchedAt: time.UnixMilli(fetchedAt),
	}
	if err := json.Unmarshal([]byte(payload), &snap.Board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal leaderboard snapshot: %w", err)
	}
	return snap, nil
}

// SaveContest stores the contest as JSON
func (s *Storage) SaveContest(ctx context.Context, snap *storage.ContestSnapshot) error {
	payload, err := json.Marshal(snap.Contest)
	if err != nil {
		return fmt.Errorf("failed to marshal contest: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO contest_snapshots (contest_id, payload, fetched_at)
		VALUES (?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, snap.Contest.ID, string(payload), snap.FetchedAt.UnixMilli()); err != nil {
		return fmt.Errorf("failed to save contest snapshot: %w", err)
	}
	return nil
}

// GetContest returns the cached contest
func (s *Storage) GetContest(ctx context.Context, contestID string) (*storage.ContestSnapshot, error) {
	var (
		payload   string
		fetchedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM contest_snapshots WHERE contest_id = ?`, contestID,
	).Scan(&payload, &fetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contest snapshot: %w", err)
	}

	snap := &storage.ContestSnapshot{FetchedAt: time.UnixMilli(fetchedAt)}
	if err := json.Unmarshal([]byte(payload), &snap.Contest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contest snapshot: %w", err)
	}
	return snap, nil
}

// Clear удаляет все снимки
func (s *Storage) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"leaderboard_snapshots", "contest_snapshots"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	return tx.Commit()
}
