package api

import (
	"fmt"
	"time"
)

// ContestStatus is the lifecycle state of a contest.
type ContestStatus string

const (
	ContestDraft     ContestStatus = "draft"
	ContestActive    ContestStatus = "active"
	ContestPaused    ContestStatus = "paused"
	ContestCompleted ContestStatus = "completed"
	ContestArchived  ContestStatus = "archived"
)

// Valid reports whether s is a known status.
func (s ContestStatus) Valid() bool {
	switch s {
	case ContestDraft, ContestActive, ContestPaused, ContestCompleted, ContestArchived:
		return true
	}
	return false
}

// ContestVisibility controls who can see a contest.
type ContestVisibility string

const (
	VisibilityPublic  ContestVisibility = "public"
	VisibilityPrivate ContestVisibility = "private"
)

// PointsScope defines which player points count towards a contest.
type PointsScope string

const (
	PointsTimeWindow PointsScope = "time_window" // очки, набранные между start_at и end_at
	PointsSnapshot   PointsScope = "snapshot"    // очки на момент снимка
)

// ContestType distinguishes single-day contests from full-season ones.
type ContestType string

const (
	ContestDaily ContestType = "daily"
	ContestFull  ContestType = "full"
)

// Contest представляет конкурс. Клиент его никогда не изменяет локально.
type Contest struct {
	StartAt      time.Time         `json:"start_at"`
	EndAt        time.Time         `json:"end_at"`
	CreatedAt    time.Time         `json:"created_at,omitzero"`
	UpdatedAt    time.Time         `json:"updated_at,omitzero"`
	Description  *string           `json:"description,omitempty"`
	ID           string            `json:"id"`
	Code         string            `json:"code"`
	Name         string            `json:"name"`
	Status       ContestStatus     `json:"status"`
	Visibility   ContestVisibility `json:"visibility"`
	PointsScope  PointsScope       `json:"points_scope"`
	ContestType  ContestType       `json:"contest_type,omitempty"`
	AllowedTeams []string          `json:"allowed_teams,omitempty"`
}

// Validate checks the invariants of a contest received from the server.
func (c *Contest) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("contest id is empty")
	}
	if !c.Status.Valid() {
		return fmt.Errorf("contest %s: unknown status %q", c.ID, c.Status)
	}
	switch c.Visibility {
	case VisibilityPublic, VisibilityPrivate:
	default:
		return fmt.Errorf("contest %s: unknown visibility %q", c.ID, c.Visibility)
	}
	switch c.PointsScope {
	case PointsTimeWindow, PointsSnapshot:
	default:
		return fmt.Errorf("contest %s: unknown points scope %q", c.ID, c.PointsScope)
	}
	if !c.StartAt.Before(c.EndAt) {
		return fmt.Errorf("contest %s: start_at must be before end_at", c.ID)
	}
	return nil
}

// ContestListParams are the query parameters of GET /api/contests.
type ContestListParams struct {
	Status   ContestStatus
	Query    string
	Page     int
	PageSize int
}

// ContestListResponse представляет страницу списка конкурсов
type ContestListResponse struct {
	Contests []Contest `json:"contests"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// EnrollRequest представляет запрос на участие команды в конкурсе
type EnrollRequest struct {
	TeamID string `json:"team_id"`
}

// EnrollmentStatus is the state of a team's enrollment.
type EnrollmentStatus string

const (
	EnrollmentActive  EnrollmentStatus = "active"
	EnrollmentRemoved EnrollmentStatus = "removed"
)

// Enrollment links a team to a contest.
type Enrollment struct {
	EnrolledAt time.Time        `json:"enrolled_at"`
	RemovedAt  *time.Time       `json:"removed_at,omitempty"`
	ID         string           `json:"id"`
	TeamID     string           `json:"team_id"`
	UserID     string           `json:"user_id"`
	ContestID  string           `json:"contest_id"`
	Status     EnrollmentStatus `json:"status"`
}

// ContestTeamPlayer is a player line of a team inside a contest.
type ContestTeamPlayer struct {
	Team          *string `json:"team,omitempty"`
	Slot          *string `json:"slot,omitempty"`
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	BasePoints    float64 `json:"base_points"`
	ContestPoints float64 `json:"contest_points"`
}

// ContestTeam is GET /api/contests/{id}/teams/{teamId}.
type ContestTeam struct {
	CaptainID     *string             `json:"captain_id,omitempty"`
	ViceCaptainID *string             `json:"vice_captain_id,omitempty"`
	TeamID        string              `json:"team_id"`
	TeamName      string              `json:"team_name"`
	ContestID     string              `json:"contest_id"`
	Players       []ContestTeamPlayer `json:"players"`
	BasePoints    float64             `json:"base_points"`
	ContestPoints float64             `json:"contest_points"`
}
