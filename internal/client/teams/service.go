// Package teams manages the user's fantasy teams.
package teams

import (
	"context"
	"log/slog"
	"strings"

	"github.com/iudanet/fantasy11/internal/validation"
	pkgapi "github.com/iudanet/fantasy11/pkg/api"
)

// API is the team part of the platform API.
type API interface {
	CreateTeam(ctx context.Context, in pkgapi.TeamInput) (*pkgapi.Team, error)
	ListTeams(ctx context.Context, skip, limit int) (*pkgapi.TeamListResponse, error)
	GetTeam(ctx context.Context, teamID string) (*pkgapi.Team, error)
	UpdateTeam(ctx context.Context, teamID string, upd pkgapi.TeamUpdate) (*pkgapi.Team, error)
	RenameTeam(ctx context.Context, teamID, name string) (*pkgapi.Team, error)
	DeleteTeam(ctx context.Context, teamID string) error
}

// DefaultLimit is the page size of List.
const DefaultLimit = 100

// Service предоставляет CRUD операции над командами
type Service struct {
	api    API
	logger *slog.Logger
}

// NewService создает сервис команд
func NewService(api API, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, logger: logger}
}

// Create validates the selection and creates the team. contestID may be empty.
func (s *Service) Create(ctx context.Context, form validation.TeamForm, contestID string) (*pkgapi.Team, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	in := pkgapi.TeamInput{
		TeamName:      strings.TrimSpace(form.TeamName),
		PlayerIDs:     form.PlayerIDs,
		CaptainID:     form.CaptainID,
		ViceCaptainID: form.ViceCaptainID,
	}
	if contestID != "" {
		in.ContestID = &contestID
	}

	team, err := s.api.CreateTeam(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "team created", slog.String("team_id", team.ID), slog.String("name", team.TeamName))
	return team, nil
}

// List returns the user's teams.
func (s *Service) List(ctx context.Context, skip, limit int) (*pkgapi.TeamListResponse, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if skip < 0 {
		skip = 0
	}
	return s.api.ListTeams(ctx, skip, limit)
}

// Get returns one team.
func (s *Service) Get(ctx context.Context, teamID string) (*pkgapi.Team, error) {
	if err := requireID(teamID); err != nil {
		return nil, err
	}
	return s.api.GetTeam(ctx, teamID)
}

// Update applies a partial update. The result of merging it into the current
// team is validated before anything is sent.
func (s *Service) Update(ctx context.Context, teamID string, upd pkgapi.TeamUpdate) (*pkgapi.Team, error) {
	current, err := s.Get(ctx, teamID)
	if err != nil {
		return nil, err
	}

	merged := validation.TeamForm{
		TeamName:  current.TeamName,
		PlayerIDs: current.PlayerIDs,
	}
	if current.CaptainID != nil {
		merged.CaptainID = *current.CaptainID
	}
	if current.ViceCaptainID != nil {
		merged.ViceCaptainID = *current.ViceCaptainID
	}
	if upd.TeamName != nil {
		merged.TeamName = *upd.TeamName
	}
	if upd.PlayerIDs != nil {
		merged.PlayerIDs = upd.PlayerIDs
	}
	if upd.CaptainID != nil {
		merged.CaptainID = *upd.CaptainID
	}
	if upd.ViceCaptainID != nil {
		merged.ViceCaptainID = *upd.ViceCaptainID
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	return s.api.UpdateTeam(ctx, teamID, upd)
}

// Rename changes only the team name.
func (s *Service) Rename(ctx context.Context, teamID, name string) (*pkgapi.Team, error) {
	if err := requireID(teamID); err != nil {
		return nil, err
	}
	if err := validation.ValidateTeamName(name); err != nil {
		return nil, err
	}
	return s.api.RenameTeam(ctx, teamID, strings.TrimSpace(name))
}

// Delete removes a team.
func (s *Service) Delete(ctx context.Context, teamID string) error {
	if err := requireID(teamID); err != nil {
		return err
	}
	if err := s.api.DeleteTeam(ctx, teamID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "team deleted", slog.String("team_id", teamID))
	return nil
}

func requireID(teamID string) error {
	if strings.TrimSpace(teamID) == "" {
		return &validation.Error{Field: "team_id", Message: "cannot be empty"}
	}
	return nil
}
