package storage

import (
	"context"

	"github.com/iudanet/fantasy11/internal/models"
)

// ContestFilter narrows ListContests.
type ContestFilter struct {
	Status string
	Query  string // подстрока названия или кода
	Offset int
	Limit  int
}

// ContestStorage defines interface for contests and the player pool
type ContestStorage interface {
	// CreateContest stores a new contest
	CreateContest(ctx context.Context, contest *models.Contest) error

	// GetContest returns ErrContestNotFound if contest doesn't exist
	GetContest(ctx context.Context, contestID string) (*models.Contest, error)

	// ListContests returns one page of public contests ordered by start time and the total count
	ListContests(ctx context.Context, filter ContestFilter) ([]*models.Contest, int, error)

	// CreatePlayer stores a player of the pool
	CreatePlayer(ctx context.Context, player *models.Player) error

	// GetPlayers returns the players in the order of ids
	// Returns ErrPlayerNotFound if any of them doesn't exist
	GetPlayers(ctx context.Context, ids []string) ([]*models.Player, error)
}

// TeamStorage defines interface for fantasy teams persistence
type TeamStorage interface {
	// CreateTeam stores a new team
	CreateTeam(ctx context.Context, team *models.Team) error

	// GetTeam returns ErrTeamNotFound if team doesn't exist
	GetTeam(ctx context.Context, teamID string) (*models.Team, error)

	// ListUserTeams returns one page of the user's teams, newest first, and the total count
	ListUserTeams(ctx context.Context, userID string, offset, limit int) ([]*models.Team, int, error)

	// UpdateTeam overwrites name, squad, captains and contest
	// Returns ErrTeamNotFound if team doesn't exist
	UpdateTeam(ctx context.Context, team *models.Team) error

	// DeleteTeam removes the team together with its enrollments
	// Returns ErrTeamNotFound if team doesn't exist
	DeleteTeam(ctx context.Context, teamID string) error
}

// EnrollmentStorage defines interface for contest entries
type EnrollmentStorage interface {
	// Enroll stores a new enrollment
	// Returns ErrAlreadyEnrolled if the team is already active in the contest
	Enroll(ctx context.Context, enrollment *models.Enrollment) error

	// ListUserEnrollments returns the user's active enrollments across contests
	ListUserEnrollments(ctx context.Context, userID string) ([]*models.Enrollment, error)

	// ListContestEnrollments returns active enrollments of the contest ordered by enrollment time
	ListContestEnrollments(ctx context.Context, contestID string) ([]*models.Enrollment, error)
}
