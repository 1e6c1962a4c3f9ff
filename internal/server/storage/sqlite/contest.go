package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/fantasy11/internal/models"
	"github.com/iudanet/fantasy11/internal/server/storage"
)

const contestColumns = `id, code, name, description, start_at, end_at, status, visibility,
	points_scope, contest_type, allowed_teams, created_at, updated_at`

// CreateContest stores a new contest
func (s *Storage) CreateContest(ctx context.Context, contest *models.Contest) error {
	allowed, err := json.Marshal(nonNil(contest.AllowedTeams))
	if err != nil {
		return fmt.Errorf("failed to marshal allowed teams: %w", err)
	}

	query := `INSERT INTO contests (` + contestColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		contest.ID,
		contest.Code,
		contest.Name,
		nullString(contest.Description),
		toMillis(contest.StartAt),
		toMillis(contest.EndAt),
		contest.Status,
		contest.Visibility,
		contest.PointsScope,
		contest.ContestType,
		string(allowed),
		toMillis(contest.CreatedAt),
		toMillis(contest.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert contest: %w", err)
	}
	return nil
}

// GetContest returns the contest by ID
func (s *Storage) GetContest(ctx context.Context, contestID string) (*models.Contest, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contestColumns+` FROM contests WHERE id = ?`, contestID)
	contest, err := scanContest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrContestNotFound
		}
		return nil, fmt.Errorf("failed to get contest: %w", err)
	}
	return contest, nil
}

// ListContests returns one page of public contests, latest start first
func (s *Storage) ListContests(ctx context.Context, filter storage.ContestFilter) ([]*models.Contest, int, error) {
	where := []string{"visibility = 'public'"}
	var args []any
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, "(name LIKE ? OR code LIKE ?)")
		pattern := "%" + q + "%"
		args = append(args, pattern, pattern)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contests WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count contests: %w", err)
	}

	query := `SELECT ` + contestColumns + ` FROM contests WHERE ` + cond + ` ORDER BY start_at DESC, code LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query contests: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	contests := make([]*models.Contest, 0, filter.Limit)
	for rows.Next() {
		contest, err := scanContest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan contest: %w", err)
		}
		contests = append(contests, contest)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return contests, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContest(row rowScanner) (*models.Contest, error) {
	var (
		c                    models.Contest
		description          sql.NullString
		startAt, endAt       int64
		createdAt, updatedAt int64
		allowed              string
	)
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Name,
		&description,
		&startAt,
		&endAt,
		&c.Status,
		&c.Visibility,
		&c.PointsScope,
		&c.ContestType,
		&allowed,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(allowed), &c.AllowedTeams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal allowed teams: %w", err)
	}

	c.Description = stringPtr(description)
	c.StartAt = fromMillis(startAt)
	c.EndAt = fromMillis(endAt)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return &c, nil
}

// CreatePlayer stores a player of the pool
func (s *Storage) CreatePlayer(ctx context.Context, player *models.Player) error {
	query := `INSERT INTO players (id, name, team, slot, price, points) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		player.ID,
		player.Name,
		nullString(player.Team),
		nullString(player.Slot),
		player.Price,
		player.Points,
	)
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

// GetPlayers returns the players in the order of ids
func (s *Storage) GetPlayers(ctx context.Context, ids []string) ([]*models.Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := `SELECT id, name, team, slot, price, points FROM players WHERE id IN (` + placeholders + `)`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	byID := make(map[string]*models.Player, len(ids))
	for rows.Next() {
		var (
			p          models.Player
			team, slot sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &team, &slot, &p.Price, &p.Points); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		p.Team = stringPtr(team)
		p.Slot = stringPtr(slot)
		byID[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	players := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", storage.ErrPlayerNotFound, id)
		}
		players = append(players, p)
	}
	return players, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
