package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fantasy11/internal/validation"
	"github.com/iudanet/fantasy11/pkg/api"
)

// fakeTokens - простая реализация TokenSource для тестов
type fakeTokens struct {
	renewErr error
	token    string
	renewed  string
	mu       sync.Mutex
	renews   int
}

func (f *fakeTokens) AccessToken(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, nil
}

func (f *fakeTokens) Renew(_ context.Context, rejected string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renews++
	if f.renewErr != nil {
		return f.renewErr
	}
	if f.token == rejected {
		f.token = f.renewed
	}
	return nil
}

type recordedCall struct {
	method string
	route  string
	status int
}

type fakeRecorder struct {
	calls []recordedCall
	mu    sync.Mutex
}

func (r *fakeRecorder) ObserveRequest(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{method: method, route: route, status: status})
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8000/")

	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:8000", client.BaseURL())
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)

	client = NewClient("http://localhost:8000", WithTimeout(5*time.Second))
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

// TestClient_Login проверяет успешный вход
func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)
		assert.Equal(t, "password1", req.Password)

		writeJSON(t, w, http.StatusOK, api.TokenResponse{AccessToken: "a1", RefreshToken: "r1", TokenType: "bearer"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetTokenSource(&fakeTokens{token: "stale"})

	resp, err := client.Login(context.Background(), api.LoginRequest{Username: "alice", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "a1", resp.AccessToken)
	assert.Equal(t, "r1", resp.RefreshToken)
}

// TestClient_Login_InvalidCredentials проверяет, что сообщение сервера доходит до вызывающего
func TestClient_Login_InvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Login(context.Background(), api.LoginRequest{Username: "alice", Password: "nope"})
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Equal(t, "Incorrect username or password", authErr.Message)
	assert.Equal(t, "Incorrect username or password", UserMessage(err))
}

// TestClient_Register проверяет multipart регистрацию
func TestClient_Register(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/register", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "bob", r.FormValue("username"))
		assert.Equal(t, "bob@example.com", r.FormValue("email"))
		assert.Equal(t, "password1", r.FormValue("password"))
		assert.Equal(t, "Bob B", r.FormValue("full_name"))
		_, hasMobile := r.MultipartForm.Value["mobile"]
		assert.False(t, hasMobile)

		file, header, err := r.FormFile("avatar")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "me.png", header.Filename)
		assert.Equal(t, []byte("png"), data)

		writeJSON(t, w, http.StatusOK, api.TokenResponse{AccessToken: "a", RefreshToken: "r"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Register(context.Background(), api.RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "password1",
		FullName: "Bob B",
		Avatar:   &api.Upload{Filename: "me.png", Data: []byte("png")},
	})
	require.NoError(t, err)
	assert.Equal(t, "r", resp.RefreshToken)
}

// TestClient_RefreshAndLogoutUseQuery проверяет передачу refresh token в query
func TestClient_RefreshAndLogoutUseQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "r1", r.URL.Query().Get("refresh_token"))
		switch r.URL.Path {
		case "/api/auth/refresh":
			writeJSON(t, w, http.StatusOK, api.TokenResponse{AccessToken: "a2", RefreshToken: "r2"})
		case "/api/auth/logout":
			writeJSON(t, w, http.StatusOK, api.MessageResponse{Message: "ok"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Refresh(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "a2", resp.AccessToken)

	require.NoError(t, client.Logout(context.Background(), "r1"))
}

// TestClient_Me_RequiresToken проверяет, что без токена запрос не отправляется
func TestClient_Me_RequiresToken(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetTokenSource(&fakeTokens{})

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.False(t, called)
}

// TestClient_RenewAndRetry проверяет повтор запроса после 401
func TestClient_RenewAndRetry(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		writeJSON(t, w, http.StatusOK, api.User{ID: "u1", Username: "alice"})
	}))
	defer server.Close()

	tokens := &fakeTokens{token: "old", renewed: "fresh"}
	client := NewClient(server.URL)
	client.SetTokenSource(tokens)

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, tokens.renews)
}

// TestClient_RenewFailure проверяет, что ошибка обновления сессии возвращается без повтора
func TestClient_RenewFailure(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
	}))
	defer server.Close()

	ended := &AuthError{Message: "session ended"}
	client := NewClient(server.URL)
	client.SetTokenSource(&fakeTokens{token: "old", renewErr: ended})

	_, err := client.ListTeams(context.Background(), 0, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ended)
	assert.Equal(t, 1, hits)
}

// TestClient_RetryOnlyOnce проверяет, что второй 401 не приводит к бесконечному циклу
func TestClient_RetryOnlyOnce(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "nope"})
	}))
	defer server.Close()

	tokens := &fakeTokens{token: "old", renewed: "new"}
	client := NewClient(server.URL)
	client.SetTokenSource(tokens)

	_, err := client.GetTeam(context.Background(), "t1")
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, tokens.renews)
}

// TestClient_OptionalAuth проверяет публичные эндпоинты с токеном и без
func TestClient_OptionalAuth(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		assert.Equal(t, "20", r.URL.Query().Get("page_size"))
		writeJSON(t, w, http.StatusOK, api.ContestListResponse{
			Contests: []api.Contest{{ID: "c1", Name: "Daily"}},
			Total:    1, Page: 1, PageSize: 20,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	params := api.ContestListParams{Status: api.ContestActive, PageSize: 20}

	resp, err := client.ListContests(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, resp.Contests, 1)
	assert.Empty(t, gotAuth)

	client.SetTokenSource(&fakeTokens{token: "tok"})
	_, err = client.ListContests(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
}

// TestClient_ErrorMapping проверяет отображение HTTP статусов на типы ошибок
func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		body    any
		check   func(t *testing.T, err error)
		name    string
		wantMsg string
		status  int
	}{
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    map[string]string{"detail": "Contest not found"},
			wantMsg: "Contest not found",
			check: func(t *testing.T, err error) {
				var nf *NotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, "contest", nf.Resource)
			},
		},
		{
			name:    "forbidden",
			status:  http.StatusForbidden,
			body:    map[string]string{"detail": "Not enough permissions"},
			wantMsg: "Not enough permissions",
			check: func(t *testing.T, err error) {
				assert.True(t, IsAuth(err))
			},
		},
		{
			name:    "conflict with message field",
			status:  http.StatusConflict,
			body:    map[string]string{"message": "Team already enrolled"},
			wantMsg: "Team already enrolled",
			check: func(t *testing.T, err error) {
				var se *ServerError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusConflict, se.Status)
			},
		},
		{
			name:   "validation detail list",
			status: http.StatusUnprocessableEntity,
			body: map[string]any{"detail": []map[string]any{
				{"loc": []string{"body", "team_id"}, "msg": "field required"},
			}},
			wantMsg: "field required",
			check: func(t *testing.T, err error) {
				var se *ServerError
				require.ErrorAs(t, err, &se)
			},
		},
		{
			name:    "internal error hides message",
			status:  http.StatusInternalServerError,
			body:    map[string]string{"error": "db down"},
			wantMsg: msgGeneric,
			check: func(t *testing.T, err error) {
				var se *ServerError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, "db down", se.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.status, tt.body)
			}))
			defer server.Close()

			client := NewClient(server.URL)
			_, err := client.GetContest(context.Background(), "c1")
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, tt.wantMsg, UserMessage(err))
		})
	}
}

// TestClient_NetworkError проверяет ошибки транспорта
func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url)
	_, err := client.GetContest(context.Background(), "c1")
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.Equal(t, msgNetwork, UserMessage(err))
}

// TestClient_Timeout проверяет, что таймаут клиента считается сетевой ошибкой
func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithTimeout(20*time.Millisecond))
	_, err := client.GetContest(context.Background(), "c1")
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
}

// TestClient_ContextCancellation проверяет, что отмена контекста не маскируется под сетевую ошибку
func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.Leaderboard(ctx, "c1", api.LeaderboardParams{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsNetwork(err))
	assert.Empty(t, UserMessage(err))
}

// TestClient_InvalidJSON проверяет обработку невалидного JSON
func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetContest(context.Background(), "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

// TestClient_Leaderboard проверяет параметры и декодирование лидерборда
func TestClient_Leaderboard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/contests/c%2F1/leaderboard", r.URL.EscapedPath())
		assert.Equal(t, "50", r.URL.Query().Get("skip"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{
			"entries": [
				{"rank": 1, "username": "a", "displayName": "A", "teamName": "TA", "points": 10.5, "rankChange": null},
				{"rank": 2, "username": "b", "displayName": "B", "teamName": "TB", "points": 9, "rankChange": -1, "teamId": "t2"}
			],
			"currentUserEntry": {"rank": 2, "username": "b", "displayName": "B", "teamName": "TB", "points": 9}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Leaderboard(context.Background(), "c/1", api.LeaderboardParams{Skip: 50, Limit: 25})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)
	assert.Nil(t, resp.Entries[0].RankChange)
	require.NotNil(t, resp.Entries[1].RankChange)
	assert.Equal(t, -1, *resp.Entries[1].RankChange)
	require.NotNil(t, resp.CurrentUserEntry)
	assert.Nil(t, resp.CurrentUserEntry.RankChange)
}

// TestClient_Teams проверяет CRUD команд
func TestClient_Teams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/teams/":
			var in api.TeamInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			writeJSON(t, w, http.StatusOK, api.Team{ID: "t1", TeamName: in.TeamName, PlayerIDs: in.PlayerIDs})
		case r.Method == http.MethodPatch && r.URL.Path == "/api/teams/t1/rename":
			writeJSON(t, w, http.StatusOK, api.Team{ID: "t1", TeamName: r.URL.Query().Get("team_name")})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/teams/t1":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetTokenSource(&fakeTokens{token: "tok"})
	ctx := context.Background()

	team, err := client.CreateTeam(ctx, api.TeamInput{TeamName: "Eleven", PlayerIDs: []string{"p1", "p2"}})
	require.NoError(t, err)
	assert.Equal(t, "Eleven", team.TeamName)

	team, err = client.RenameTeam(ctx, "t1", "Twelve")
	require.NoError(t, err)
	assert.Equal(t, "Twelve", team.TeamName)

	require.NoError(t, client.DeleteTeam(ctx, "t1"))
}

// TestClient_Recorder проверяет запись метрик по шаблону маршрута
func TestClient_Recorder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]string{"detail": "gone"})
	}))
	defer server.Close()

	rec := &fakeRecorder{}
	client := NewClient(server.URL, WithRecorder(rec))
	_, _ = client.GetContest(context.Background(), "c42")

	require.Len(t, rec.calls, 1)
	assert.Equal(t, recordedCall{method: http.MethodGet, route: "/api/contests/{id}", status: http.StatusNotFound}, rec.calls[0])
}

// TestClient_HTTPClientRedirect проверяет сохранение Authorization при редиректе
func TestClient_HTTPClientRedirect(t *testing.T) {
	var finalAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/teams", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/teams/?"+r.URL.RawQuery, http.StatusTemporaryRedirect)
	})
	mux.HandleFunc("/api/teams/", func(w http.ResponseWriter, r *http.Request) {
		finalAuth = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK, api.TeamListResponse{})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL)
	client.SetTokenSource(&fakeTokens{token: "tok"})

	err := client.do(context.Background(), request{
		method: http.MethodGet,
		path:   "/api/teams",
		auth:   authRequired,
	}, &api.TeamListResponse{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", finalAuth)
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, msgGeneric, UserMessage(errors.New("boom")))
	assert.Equal(t, msgNotFound, UserMessage(&NotFoundError{Resource: "team"}))
	assert.Equal(t, msgAuth, UserMessage(&AuthError{}))
	assert.Equal(t, "name: is required", UserMessage(&validation.Error{Field: "name", Message: "is required"}))
}
