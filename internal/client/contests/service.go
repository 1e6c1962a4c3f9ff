// Package contests browses contests and enrolls the user's teams in them.
package contests

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iudanet/fantasy11/internal/validation"
	pkgapi "github.com/iudanet/fantasy11/pkg/api"
)

// API is the contest part of the platform API.
type API interface {
	ListContests(ctx context.Context, params pkgapi.ContestListParams) (*pkgapi.ContestListResponse, error)
	GetContest(ctx context.Context, contestID string) (*pkgapi.Contest, error)
	Enroll(ctx context.Context, contestID, teamID string) (*pkgapi.Enrollment, error)
	MyEnrollments(ctx context.Context) ([]pkgapi.Enrollment, error)
}

// DefaultPageSize используется, когда размер страницы не задан
const DefaultPageSize = 20

// Service предоставляет операции над конкурсами
type Service struct {
	api      API
	logger   *slog.Logger
	pageSize int
}

// NewService создает сервис конкурсов. pageSize <= 0 means DefaultPageSize.
func NewService(api API, pageSize int, logger *slog.Logger) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, pageSize: pageSize, logger: logger}
}

// List returns one page of contests. Contests that fail validation are
// logged and dropped.
func (s *Service) List(ctx context.Context, params pkgapi.ContestListParams) (*pkgapi.ContestListResponse, error) {
	if params.Status != "" && !params.Status.Valid() {
		return nil, &validation.Error{Field: "status", Message: fmt.Sprintf("unknown contest status %q", params.Status)}
	}
	if params.PageSize <= 0 {
		params.PageSize = s.pageSize
	}
	if params.Page <= 0 {
		params.Page = 1
	}
	params.Query = strings.TrimSpace(params.Query)

	resp, err := s.api.ListContests(ctx, params)
	if err != nil {
		return nil, err
	}

	valid := resp.Contests[:0]
	for _, c := range resp.Contests {
		if err := c.Validate(); err != nil {
			s.logger.WarnContext(ctx, "skipping invalid contest", slog.Any("error", err))
			continue
		}
		valid = append(valid, c)
	}
	resp.Contests = valid
	return resp, nil
}

// Get returns one contest.
func (s *Service) Get(ctx context.Context, contestID string) (*pkgapi.Contest, error) {
	if strings.TrimSpace(contestID) == "" {
		return nil, &validation.Error{Field: "contest_id", Message: "cannot be empty"}
	}
	return s.api.GetContest(ctx, contestID)
}

// Enroll enters teamID into the contest. Only active contests accept entries.
func (s *Service) Enroll(ctx context.Context, contestID, teamID string) (*pkgapi.Enrollment, error) {
	if strings.TrimSpace(teamID) == "" {
		return nil, &validation.Error{Field: "team_id", Message: "select a team"}
	}

	contest, err := s.Get(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if contest.Status != pkgapi.ContestActive {
		return nil, &validation.Error{
			Field:   "contest_id",
			Message: fmt.Sprintf("contest %s is %s and does not accept entries", contest.Name, contest.Status),
		}
	}

	enrollment, err := s.api.Enroll(ctx, contestID, teamID)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "team enrolled",
		slog.String("contest_id", contestID),
		slog.String("team_id", teamID),
	)
	return enrollment, nil
}

// Enrollments returns the user's active enrollments, optionally for one contest.
func (s *Service) Enrollments(ctx context.Context, contestID string) ([]pkgapi.Enrollment, error) {
	all, err := s.api.MyEnrollments(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]pkgapi.Enrollment, 0, len(all))
	for _, e := range all {
		if e.Status != pkgapi.EnrollmentActive {
			continue
		}
		if contestID != "" && e.ContestID != contestID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
