package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/fantasy11/internal/models"
	"github.com/iudanet/fantasy11/internal/server/storage"
)

const teamColumns = `id, user_id, team_name, player_ids, captain_id, vice_captain_id, contest_id, created_at, updated_at`

// CreateTeam stores a new team
func (s *Storage) CreateTeam(ctx context.Context, team *models.Team) error {
	players, err := json.Marshal(nonNil(team.PlayerIDs))
	if err != nil {
		return fmt.Errorf("failed to marshal player ids: %w", err)
	}

	query := `INSERT INTO teams (` + teamColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		team.ID,
		team.UserID,
		team.TeamName,
		string(players),
		nullString(team.CaptainID),
		nullString(team.ViceCaptainID),
		nullString(team.ContestID),
		toMillis(team.CreatedAt),
		toMillis(team.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

// GetTeam returns the team by ID
func (s *Storage) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, teamID)
	team, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// ListUserTeams returns one page of the user's teams, newest first
func (s *Storage) ListUserTeams(ctx context.Context, userID string, offset, limit int) ([]*models.Team, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count teams: %w", err)
	}

	query := `SELECT ` + teamColumns + ` FROM teams WHERE user_id = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query teams: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	teams := make([]*models.Team, 0, limit)
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return teams, total, nil
}

// UpdateTeam overwrites name, squad, captains and contest
func (s *Storage) UpdateTeam(ctx context.Context, team *models.Team) error {
	players, err := json.Marshal(nonNil(team.PlayerIDs))
	if err != nil {
		return fmt.Errorf("failed to marshal player ids: %w", err)
	}

	query := `
		UPDATE teams
		SET team_name = ?, player_ids = ?, captain_id = ?, vice_captain_id = ?, contest_id = ?, updated_at = ?
		WHERE id = ?
	`
	n, err := s.affected(ctx, query,
		team.TeamName,
		string(players),
		nullString(team.CaptainID),
		nullString(team.ViceCaptainID),
		nullString(team.ContestID),
		toMillis(team.UpdatedAt),
		team.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}
	if n == 0 {
		return storage.ErrTeamNotFound
	}
	return nil
}

// DeleteTeam removes the team; enrollments go with it via ON DELETE CASCADE
func (s *Storage) DeleteTeam(ctx context.Context, teamID string) error {
	n, err := s.affected(ctx, `DELETE FROM teams WHERE id = ?`, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if n == 0 {
		return storage.ErrTeamNotFound
	}
	return nil
}

func scanTeam(row rowScanner) (*models.Team, error) {
	var (
		t                        models.Team
		players                  string
		captain, vice, contestID sql.NullString
		createdAt, updatedAt     int64
	)
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.TeamName,
		&players,
		&captain,
		&vice,
		&contestID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(players), &t.PlayerIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player ids: %w", err)
	}

	t.CaptainID = stringPtr(captain)
	t.ViceCaptainID = stringPtr(vice)
	t.ContestID = stringPtr(contestID)
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return &t, nil
}
