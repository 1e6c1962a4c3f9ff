package teams

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientapi "github.com/iudanet/fantasy11/internal/client/api"
	"github.com/iudanet/fantasy11/internal/validation"
	pkgapi "github.com/iudanet/fantasy11/pkg/api"
)

// fakeAPI хранит команды в памяти
type fakeAPI struct {
	teams     map[string]*pkgapi.Team
	lastInput *pkgapi.TeamInput
	lastSkip  int
	lastLimit int
	writes    int
}

func strPtr(s string) *string { return &s }

func newFakeAPI() *fakeAPI {
	return &fakeAPI{teams: map[string]*pkgapi.Team{
		"t1": {
			ID:            "t1",
			TeamName:      "Eleven",
			PlayerIDs:     []string{"p1", "p2", "p3"},
			CaptainID:     strPtr("p1"),
			ViceCaptainID: strPtr("p2"),
		},
	}}
}

func (f *fakeAPI) CreateTeam(_ context.Context, in pkgapi.TeamInput) (*pkgapi.Team, error) {
	f.writes++
	f.lastInput = &in
	team := &pkgapi.Team{ID: "t2", TeamName: in.TeamName, PlayerIDs: in.PlayerIDs, ContestID: in.ContestID}
	f.teams[team.ID] = team
	return team, nil
}

func (f *fakeAPI) ListTeams(_ context.Context, skip, limit int) (*pkgapi.TeamListResponse, error) {
	f.lastSkip, f.lastLimit = skip, limit
	resp := &pkgapi.TeamListResponse{}
	for _, t := range f.teams {
		resp.Teams = append(resp.Teams, *t)
	}
	resp.Total = len(resp.Teams)
	return resp, nil
}

func (f *fakeAPI) GetTeam(_ context.Context, id string) (*pkgapi.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, &clientapi.NotFoundError{Resource: "team"}
	}
	cp := *t
	return &cp, nil
}

func (f *fakeAPI) UpdateTeam(_ context.Context, id string, upd pkgapi.TeamUpdate) (*pkgapi.Team, error) {
	f.writes++
	t := f.teams[id]
	if upd.TeamName != nil {
		t.TeamName = *upd.TeamName
	}
	if upd.CaptainID != nil {
		t.CaptainID = upd.CaptainID
	}
	return t, nil
}

func (f *fakeAPI) RenameTeam(_ context.Context, id, name string) (*pkgapi.Team, error) {
	f.writes++
	f.teams[id].TeamName = name
	return f.teams[id], nil
}

func (f *fakeAPI) DeleteTeam(_ context.Context, id string) error {
	if _, ok := f.teams[id]; !ok {
		return &clientapi.NotFoundError{Resource: "team"}
	}
	f.writes++
	delete(f.teams, id)
	return nil
}

func TestService_Create(t *testing.T) {
	api := newFakeAPI()
	svc := NewService(api, nil)

	team, err := svc.Create(context.Background(), validation.TeamForm{
		TeamName:      "  Twelve ",
		PlayerIDs:     []string{"p1", "p2"},
		CaptainID:     "p1",
		ViceCaptainID: "p2",
	}, "c1")
	require.NoError(t, err)

	assert.Equal(t, "Twelve", team.TeamName)
	require.NotNil(t, api.lastInput.ContestID)
	assert.Equal(t, "c1", *api.lastInput.ContestID)
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name      string
		wantField string
		form      validation.TeamForm
	}{
		{
			name:      "empty name",
			form:      validation.TeamForm{PlayerIDs: []string{"p1", "p2"}, CaptainID: "p1", ViceCaptainID: "p2"},
			wantField: "team_name",
		},
		{
			name:      "same captain and vice",
			form:      validation.TeamForm{TeamName: "X", PlayerIDs: []string{"p1", "p2"}, CaptainID: "p1", ViceCaptainID: "p1"},
			wantField: "vice_captain_id",
		},
		{
			name:      "captain outside squad",
			form:      validation.TeamForm{TeamName: "X", PlayerIDs: []string{"p1", "p2"}, CaptainID: "p9", ViceCaptainID: "p2"},
			wantField: "captain_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			_, err := NewService(api, nil).Create(context.Background(), tt.form, "")

			var verr *validation.Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Zero(t, api.writes)
		})
	}
}

func TestService_List_Defaults(t *testing.T) {
	api := newFakeAPI()
	resp, err := NewService(api, nil).List(context.Background(), -5, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, api.lastSkip)
	assert.Equal(t, DefaultLimit, api.lastLimit)
	assert.Equal(t, 1, resp.Total)
}

func TestService_Update(t *testing.T) {
	t.Run("valid captain change", func(t *testing.T) {
		api := newFakeAPI()
		team, err := NewService(api, nil).Update(context.Background(), "t1", pkgapi.TeamUpdate{CaptainID: strPtr("p3")})
		require.NoError(t, err)
		assert.Equal(t, "p3", *team.CaptainID)
	})

	t.Run("captain equal to current vice captain", func(t *testing.T) {
		api := newFakeAPI()
		_, err := NewService(api, nil).Update(context.Background(), "t1", pkgapi.TeamUpdate{CaptainID: strPtr("p2")})
		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		assert.Zero(t, api.writes)
	})

	t.Run("squad change drops the captain", func(t *testing.T) {
		api := newFakeAPI()
		_, err := NewService(api, nil).Update(context.Background(), "t1", pkgapi.TeamUpdate{PlayerIDs: []string{"p2", "p3"}})
		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "captain_id", verr.Field)
	})

	t.Run("unknown team", func(t *testing.T) {
		_, err := NewService(newFakeAPI(), nil).Update(context.Background(), "nope", pkgapi.TeamUpdate{})
		assert.True(t, clientapi.IsNotFound(err))
	})
}

func TestService_RenameAndDelete(t *testing.T) {
	api := newFakeAPI()
	svc := NewService(api, nil)
	ctx := context.Background()

	_, err := svc.Rename(ctx, "t1", "   ")
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)

	team, err := svc.Rename(ctx, "t1", " Renamed ")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", team.TeamName)

	require.NoError(t, svc.Delete(ctx, "t1"))
	assert.True(t, clientapi.IsNotFound(svc.Delete(ctx, "t1")))

	err = svc.Delete(ctx, "")
	assert.ErrorAs(t, err, &verr)
}
