package contests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientapi "github.com/iudanet/fantasy11/internal/client/api"
	"github.com/iudanet/fantasy11/internal/validation"
	pkgapi "github.com/iudanet/fantasy11/pkg/api"
)

type fakeAPI struct {
	contests    map[string]pkgapi.Contest
	enrollments []pkgapi.Enrollment
	listParams  pkgapi.ContestListParams
	enrolled    []string
}

func (f *fakeAPI) ListContests(_ context.Context, params pkgapi.ContestListParams) (*pkgapi.ContestListResponse, error) {
	f.listParams = params
	resp := &pkgapi.ContestListResponse{Page: params.Page, PageSize: params.PageSize}
	for _, id := range []string{"c1", "c2", "bad"} {
		if c, ok := f.contests[id]; ok {
			resp.Contests = append(resp.Contests, c)
		}
	}
	resp.Total = len(resp.Contests)
	return resp, nil
}

func (f *fakeAPI) GetContest(_ context.Context, id string) (*pkgapi.Contest, error) {
	c, ok := f.contests[id]
	if !ok {
		return nil, &clientapi.NotFoundError{Resource: "contest"}
	}
	return &c, nil
}

func (f *fakeAPI) Enroll(_ context.Context, contestID, teamID string) (*pkgapi.Enrollment, error) {
	f.enrolled = append(f.enrolled, contestID+"/"+teamID)
	return &pkgapi.Enrollment{ID: "e1", ContestID: contestID, TeamID: teamID, Status: pkgapi.EnrollmentActive}, nil
}

func (f *fakeAPI) MyEnrollments(context.Context) ([]pkgapi.Enrollment, error) {
	return f.enrollments, nil
}

func contest(id string, status pkgapi.ContestStatus) pkgapi.Contest {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	return pkgapi.Contest{
		ID:          id,
		Name:        "Contest " + id,
		StartAt:     start,
		EndAt:       start.Add(time.Hour),
		Status:      status,
		Visibility:  pkgapi.VisibilityPublic,
		PointsScope: pkgapi.PointsSnapshot,
	}
}

func newFakeAPI() *fakeAPI {
	bad := contest("bad", pkgapi.ContestActive)
	bad.EndAt = bad.StartAt
	return &fakeAPI{contests: map[string]pkgapi.Contest{
		"c1":  contest("c1", pkgapi.ContestActive),
		"c2":  contest("c2", pkgapi.ContestCompleted),
		"bad": bad,
	}}
}

func TestService_List(t *testing.T) {
	api := newFakeAPI()
	svc := NewService(api, 0, nil)

	resp, err := svc.List(context.Background(), pkgapi.ContestListParams{Query: "  cup ", Status: pkgapi.ContestActive})
	require.NoError(t, err)

	assert.Equal(t, DefaultPageSize, api.listParams.PageSize)
	assert.Equal(t, 1, api.listParams.Page)
	assert.Equal(t, "cup", api.listParams.Query)
	require.Len(t, resp.Contests, 2)
	assert.Equal(t, "c1", resp.Contests[0].ID)
	assert.Equal(t, "c2", resp.Contests[1].ID)
}

func TestService_List_InvalidStatus(t *testing.T) {
	svc := NewService(newFakeAPI(), 10, nil)

	_, err := svc.List(context.Background(), pkgapi.ContestListParams{Status: "running"})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}

func TestService_Enroll(t *testing.T) {
	tests := []struct {
		name      string
		contestID string
		teamID    string
		wantField string
		wantErr   bool
		notFound  bool
	}{
		{name: "active contest", contestID: "c1", teamID: "t1"},
		{name: "missing team", contestID: "c1", teamID: " ", wantErr: true, wantField: "team_id"},
		{name: "completed contest", contestID: "c2", teamID: "t1", wantErr: true, wantField: "contest_id"},
		{name: "unknown contest", contestID: "nope", teamID: "t1", wantErr: true, notFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			svc := NewService(api, 0, nil)

			enrollment, err := svc.Enroll(context.Background(), tt.contestID, tt.teamID)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.teamID, enrollment.TeamID)
				assert.Equal(t, []string{"c1/t1"}, api.enrolled)
				return
			}

			require.Error(t, err)
			assert.Empty(t, api.enrolled)
			if tt.notFound {
				assert.True(t, clientapi.IsNotFound(err))
				return
			}
			var verr *validation.Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestService_Enrollments(t *testing.T) {
	api := newFakeAPI()
	api.enrollments = []pkgapi.Enrollment{
		{ID: "e1", ContestID: "c1", TeamID: "t1", Status: pkgapi.EnrollmentActive},
		{ID: "e2", ContestID: "c1", TeamID: "t2", Status: pkgapi.EnrollmentRemoved},
		{ID: "e3", ContestID: "c2", TeamID: "t1", Status: pkgapi.EnrollmentActive},
	}
	svc := NewService(api, 0, nil)

	all, err := svc.Enrollments(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	c1, err := svc.Enrollments(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, c1, 1)
	assert.Equal(t, "e1", c1[0].ID)
}

func TestService_Get_EmptyID(t *testing.T) {
	_, err := NewService(newFakeAPI(), 0, nil).Get(context.Background(), "")
	var verr *validation.Error
	assert.ErrorAs(t, err, &verr)
}
