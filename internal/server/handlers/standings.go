package handlers

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/iudanet/fantasy11/internal/models"
	"github.com/iudanet/fantasy11/internal/server/storage"
	"github.com/iudanet/fantasy11/pkg/api"
)

// Scorer считает очки команд и таблицу конкурса по текущим данным хранилища.
// Очки игрока умножаются для капитана и вице-капитана.
type Scorer struct {
	users       storage.UserStorage
	contests    storage.ContestStorage
	teams       storage.TeamStorage
	enrollments storage.EnrollmentStorage
}

// NewScorer создает Scorer
func NewScorer(users storage.UserStorage, contests storage.ContestStorage, teams storage.TeamStorage, enrollments storage.EnrollmentStorage) *Scorer {
	return &Scorer{users: users, contests: contests, teams: teams, enrollments: enrollments}
}

// teamScore is the computed part of a team.
type teamScore struct {
	rank       *int
	rankChange *int
	players    []*models.Player
	base       float64 // без множителей
	points     float64
	value      float64
}

// standing is one row of a contest table before pagination.
type standing struct {
	enrollment *models.Enrollment
	team       *models.Team
	user       *models.User
	score      teamScore
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Score считает очки и стоимость команды без места в таблице
func (s *Scorer) Score(ctx context.Context, team *models.Team) (teamScore, error) {
	players, err := s.contests.GetPlayers(ctx, team.PlayerIDs)
	if err != nil {
		return teamScore{}, fmt.Errorf("failed to load players of team %s: %w", team.ID, err)
	}

	score := teamScore{players: players}
	for _, p := range players {
		score.base += p.Points
		score.points += p.Points * team.Multiplier(p.ID)
		score.value += p.Price
	}
	score.base = round2(score.base)
	score.points = round2(score.points)
	score.value = round2(score.value)
	return score, nil
}

// ScoreWithRank добавляет место команды, если она участвует в своём конкурсе
func (s *Scorer) ScoreWithRank(ctx context.Context, team *models.Team) (teamScore, error) {
	score, err := s.Score(ctx, team)
	if err != nil || team.ContestID == nil {
		return score, err
	}

	rows, err := s.standings(ctx, *team.ContestID)
	if err != nil {
		return teamScore{}, err
	}
	for i, row := range rows {
		if row.team.ID == team.ID {
			rank := i + 1
			score.rank = &rank
			score.rankChange = rankChange(row.enrollment, rank)
			break
		}
	}
	return score, nil
}

// standings строит полную таблицу: очки по убыванию, при равенстве раньше записавшийся выше
func (s *Scorer) standings(ctx context.Context, contestID string) ([]standing, error) {
	enrollments, err := s.enrollments.ListContestEnrollments(ctx, contestID)
	if err != nil {
		return nil, err
	}

	rows := make([]standing, 0, len(enrollments))
	for _, e := range enrollments {
		team, err := s.teams.GetTeam(ctx, e.TeamID)
		if err != nil {
			return nil, err
		}
		user, err := s.users.GetUserByID(ctx, e.UserID)
		if err != nil {
			return nil, err
		}
		score, err := s.Score(ctx, team)
		if err != nil {
			return nil, err
		}
		rows = append(rows, standing{enrollment: e, team: team, user: user, score: score})
	}

	slices.SortStableFunc(rows, func(a, b standing) int {
		return cmp.Compare(b.score.points, a.score.points)
	})
	return rows, nil
}

// Leaderboard возвращает страницу таблицы и строку текущего пользователя
func (s *Scorer) Leaderboard(ctx context.Context, contestID, userID string, skip, limit int) (*api.LeaderboardResponse, error) {
	rows, err := s.standings(ctx, contestID)
	if err != nil {
		return nil, err
	}

	resp := &api.LeaderboardResponse{Entries: []api.LeaderboardEntry{}}
	for i, row := range rows {
		rank := i + 1
		if userID != "" && resp.CurrentUserEntry == nil && row.user.ID == userID {
			entry := leaderboardEntry(row, rank)
			resp.CurrentUserEntry = &entry
		}
		if i >= skip && len(resp.Entries) < limit {
			resp.Entries = append(resp.Entries, leaderboardEntry(row, rank))
		}
	}
	return resp, nil
}

// ContestTeam возвращает состав команды с очками в рамках конкурса
func (s *Scorer) ContestTeam(ctx context.Context, contestID, teamID string) (*api.ContestTeam, error) {
	enrollments, err := s.enrollments.ListContestEnrollments(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(enrollments, func(e *models.Enrollment) bool { return e.TeamID == teamID }) {
		return nil, storage.ErrTeamNotFound
	}

	team, err := s.teams.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	score, err := s.Score(ctx, team)
	if err != nil {
		return nil, err
	}

	out := &api.ContestTeam{
		TeamID:        team.ID,
		TeamName:      team.TeamName,
		ContestID:     contestID,
		CaptainID:     team.CaptainID,
		ViceCaptainID: team.ViceCaptainID,
		BasePoints:    score.base,
		ContestPoints: score.points,
		Players:       make([]api.ContestTeamPlayer, 0, len(score.players)),
	}
	for _, p := range score.players {
		out.Players = append(out.Players, api.ContestTeamPlayer{
			ID:            p.ID,
			Name:          p.Name,
			Team:          p.Team,
			Slot:          p.Slot,
			Price:         p.Price,
			BasePoints:    p.Points,
			ContestPoints: round2(p.Points * team.Multiplier(p.ID)),
		})
	}
	return out, nil
}

func leaderboardEntry(row standing, rank int) api.LeaderboardEntry {
	displayName := row.user.FullName
	if displayName == "" {
		displayName = row.user.Username
	}
	teamID := row.team.ID
	return api.LeaderboardEntry{
		Rank:        rank,
		Username:    row.user.Username,
		DisplayName: displayName,
		TeamName:    row.team.TeamName,
		Points:      row.score.points,
		RankChange:  rankChange(row.enrollment, rank),
		AvatarURL:   optional(row.user.AvatarURL),
		TeamID:      &teamID,
	}
}

// rankChange положителен, когда команда поднялась относительно прошлого снимка
func rankChange(e *models.Enrollment, rank int) *int {
	if e.PreviousRank == nil {
		return nil
	}
	change := *e.PreviousRank - rank
	return &change
}
