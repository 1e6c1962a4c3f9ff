package models

import "time"

// Contest is a scored competition window teams enroll into.
type Contest struct {
	StartAt      time.Time
	EndAt        time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Description  *string
	ID           string
	Code         string
	Name         string
	Status       string
	Visibility   string
	PointsScope  string
	ContestType  string
	AllowedTeams []string
}

// OpenForEnrollment reports whether teams can still enter the contest.
func (c *Contest) OpenForEnrollment() bool {
	return c.Status == "draft" || c.Status == "active"
}

// Player is a cricketer that can be picked into a team.
type Player struct {
	Team   *string // реальная команда игрока
	Slot   *string // роль: batter, bowler, all-rounder, keeper
	ID     string
	Name   string
	Price  float64
	Points float64
}

// Team is a user's fantasy XI.
type Team struct {
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CaptainID     *string
	ViceCaptainID *string
	ContestID     *string
	ID            string
	UserID        string
	TeamName      string
	PlayerIDs     []string
}

// Enrollment links a team to a contest.
type Enrollment struct {
	EnrolledAt   time.Time
	RemovedAt    *time.Time
	PreviousRank *int // место в предыдущем снимке таблицы
	ID           string
	TeamID       string
	UserID       string
	ContestID    string
	Status       string
}

// Enrollment statuses.
const (
	EnrollmentActive  = "active"
	EnrollmentRemoved = "removed"
)

// Очки капитана и вице-капитана умножаются
const (
	CaptainMultiplier     = 2.0
	ViceCaptainMultiplier = 1.5
)

// Multiplier returns the points multiplier of playerID within the team.
func (t *Team) Multiplier(playerID string) float64 {
	switch {
	case t.CaptainID != nil && *t.CaptainID == playerID:
		return CaptainMultiplier
	case t.ViceCaptainID != nil && *t.ViceCaptainID == playerID:
		return ViceCaptainMultiplier
	}
	return 1
}
