package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/fantasy11/internal/models"
	"github.com/iudanet/fantasy11/internal/server/storage/sqlite"
)

// testUserHeader подменяет middleware аутентификации в тестах handlers
const testUserHeader = "X-Test-User"

type testEnv struct {
	store  *sqlite.Storage
	router *mux.Router
	jwt    JWTConfig
	alice  *models.User
	bob    *models.User
}

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:          []byte("test-secret-key"),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

// asUser кладет в контекст пользователя из testUserHeader.
// required=false пропускает анонимные запросы
func asUser(store *sqlite.Storage, required bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(testUserHeader)
			if id == "" {
				if required {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			user, err := store.GetUserByID(r.Context(), id)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user.ID, user.Username)))
		})
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	env := &testEnv{store: store, jwt: testJWTConfig()}
	env.seed(t)

	logger := setupTestLogger()
	scorer := NewScorer(store, store, store, store)
	authH := NewAuthHandler(logger, store, store, env.jwt, bcrypt.MinCost)
	userH := NewUserHandler(logger, store)
	contestH := NewContestHandler(logger, store, store, store, scorer)
	teamH := NewTeamHandler(logger, store, store, scorer)
	healthH := NewHealthHandler(logger, store, "test")

	r := mux.NewRouter()
	r.HandleFunc("/api/health", healthH.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/register", authH.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", authH.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/refresh", authH.Refresh).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", authH.Logout).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/reset-password-mobile", authH.ResetPasswordByMobile).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{id}/avatar", userH.Avatar).Methods(http.MethodGet)

	optional := r.NewRoute().Subrouter()
	optional.Use(asUser(store, false))
	optional.HandleFunc("/api/contests", contestH.List).Methods(http.MethodGet)
	optional.HandleFunc("/api/contests/{id}", contestH.Get).Methods(http.MethodGet)
	optional.HandleFunc("/api/contests/{id}/leaderboard", contestH.Leaderboard).Methods(http.MethodGet)
	optional.HandleFunc("/api/contests/{id}/teams/{teamId}", contestH.ContestTeam).Methods(http.MethodGet)

	protected := r.NewRoute().Subrouter()
	protected.Use(asUser(store, true))
	protected.HandleFunc("/api/users/me", userH.Me).Methods(http.MethodGet)
	protected.HandleFunc("/api/users/me", userH.UpdateMe).Methods(http.MethodPut)
	protected.HandleFunc("/api/contests/enrollments/me", contestH.MyEnrollments).Methods(http.MethodGet)
	protected.HandleFunc("/api/contests/{id}/enroll", contestH.Enroll).Methods(http.MethodPost)
	protected.HandleFunc("/api/teams/", teamH.Create).Methods(http.MethodPost)
	protected.HandleFunc("/api/teams/", teamH.List).Methods(http.MethodGet)
	protected.HandleFunc("/api/teams/{id}", teamH.Get).Methods(http.MethodGet)
	protected.HandleFunc("/api/teams/{id}", teamH.Update).Methods(http.MethodPut)
	protected.HandleFunc("/api/teams/{id}", teamH.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/api/teams/{id}/rename", teamH.Rename).Methods(http.MethodPatch)

	env.router = r
	return env
}

// seed создает игроков, конкурсы и двух пользователей
func (e *testEnv) seed(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	players := []struct {
		id, team string
		points   float64
	}{
		{"p1", "IND", 10},
		{"p2", "IND", 20},
		{"p3", "IND", 30},
		{"p4", "AUS", 40},
	}
	for _, p := range players {
		team := p.team
		require.NoError(t, e.store.CreatePlayer(ctx, &models.Player{
			ID: p.id, Name: "Player " + p.id, Team: &team, Price: 8, Points: p.points,
		}))
	}

	contests := []*models.Contest{
		{ID: "c-active", Code: "ACT", Name: "Active Cup", Status: "active", Visibility: "public",
			PointsScope: "time_window", AllowedTeams: []string{"IND"}},
		{ID: "c-done", Code: "DONE", Name: "Done Cup", Status: "completed", Visibility: "public",
			PointsScope: "snapshot"},
		{ID: "c-private", Code: "PRIV", Name: "Private Cup", Status: "draft", Visibility: "private",
			PointsScope: "snapshot"},
	}
	for i, c := range contests {
		c.StartAt = now.Add(time.Duration(-i) * time.Hour)
		c.EndAt = now.Add(24 * time.Hour)
		c.CreatedAt, c.UpdatedAt = now, now
		require.NoError(t, e.store.CreateContest(ctx, c))
	}

	e.alice = e.createUser(t, "alice", "+911111111111")
	e.bob = e.createUser(t, "bob", "")
}

func (e *testEnv) createUser(t *testing.T, username, mobile string) *models.User {
	hash, err := HashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	user := &models.User{
		ID:           username + "-id",
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		FullName:     "Full " + username,
		Mobile:       mobile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

// createTeam создает команду напрямую в хранилище
func (e *testEnv) createTeam(t *testing.T, owner *models.User, name string, playerIDs []string, captain, vice string) *models.Team {
	now := time.Now()
	team := &models.Team{
		ID:            owner.Username + "-" + name,
		UserID:        owner.ID,
		TeamName:      name,
		PlayerIDs:     playerIDs,
		CaptainID:     &captain,
		ViceCaptainID: &vice,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, e.store.CreateTeam(context.Background(), team))
	return team
}

func (e *testEnv) enroll(t *testing.T, team *models.Team, contestID string, previousRank *int) {
	require.NoError(t, e.store.Enroll(context.Background(), &models.Enrollment{
		ID:           team.ID + "-" + contestID,
		TeamID:       team.ID,
		UserID:       team.UserID,
		ContestID:    contestID,
		Status:       models.EnrollmentActive,
		EnrolledAt:   time.Now(),
		PreviousRank: previousRank,
	}))
}

// do выполняет запрос от имени user (nil - анонимно)
func (e *testEnv) do(t *testing.T, method, target string, body any, user *models.User) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set(testUserHeader, user.ID)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func detailOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[struct {
		Detail string `json:"detail"`
	}](t, w).Detail
}

func intPtr(i int) *int {
	return &i
}
