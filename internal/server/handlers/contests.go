package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iudanet/fantasy11/internal/models"
	"github.com/iudanet/fantasy11/internal/server/storage"
	"github.com/iudanet/fantasy11/pkg/api"
)

// Значения пагинации по умолчанию
const (
	DefaultContestPageSize = 20
	MaxContestPageSize     = 100
	DefaultLeaderboardSize = 50
	MaxLeaderboardSize     = 200
)

// ContestHandler обслуживает конкурсы, записи в них и таблицы
type ContestHandler struct {
	responder
	contests    storage.ContestStorage
	teams       storage.TeamStorage
	enrollments storage.EnrollmentStorage
	scorer      *Scorer
}

// NewContestHandler создает handler конкурсов
func NewContestHandler(logger *slog.Logger, contests storage.ContestStorage, teams storage.TeamStorage, enrollments storage.EnrollmentStorage, scorer *Scorer) *ContestHandler {
	return &ContestHandler{
		responder:   responder{logger: logger},
		contests:    contests,
		teams:       teams,
		enrollments: enrollments,
		scorer:      scorer,
	}
}

// List обрабатывает GET /api/contests?status=&q=&page=&page_size=
func (h *ContestHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := q.Get("status")
	if status != "" && !api.ContestStatus(status).Valid() {
		h.sendError(w, fmt.Sprintf("Unknown contest status %q", status), http.StatusBadRequest)
		return
	}

	page, pageSize := 1, DefaultContestPageSize
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.sendError(w, "page must be a positive number", http.StatusBadRequest)
			return
		}
		page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.sendError(w, "page_size must be a positive number", http.StatusBadRequest)
			return
		}
		pageSize = min(n, MaxContestPageSize)
	}

	contests, total, err := h.contests.ListContests(r.Context(), storage.ContestFilter{
		Status: status,
		Query:  q.Get("q"),
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		h.internalError(w, r, "failed to list contests", err)
		return
	}

	resp := api.ContestListResponse{
		Contests: make([]api.Contest, 0, len(contests)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, c := range contests {
		resp.Contests = append(resp.Contests, contestDTO(c))
	}
	h.sendJSON(w, resp, http.StatusOK)
}

// Get обрабатывает GET /api/contests/{id}
func (h *ContestHandler) Get(w http.ResponseWriter, r *http.Request) {
	contest, ok := h.contest(w, r)
	if !ok {
		return
	}
	h.sendJSON(w, contestDTO(contest), http.StatusOK)
}

// Leaderboard обрабатывает GET /api/contests/{id}/leaderboard?skip=&limit=
// Для аутентифицированного пользователя добавляется currentUserEntry
func (h *ContestHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	contest, ok := h.contest(w, r)
	if !ok {
		return
	}

	skip, limit, ok := pageParams(r, DefaultLeaderboardSize, MaxLeaderboardSize)
	if !ok {
		h.sendError(w, "skip and limit must be non-negative numbers", http.StatusBadRequest)
		return
	}

	userID, _ := GetUserID(r.Context())
	resp, err := h.scorer.Leaderboard(r.Context(), contest.ID, userID, skip, limit)
	if err != nil {
		h.internalError(w, r, "failed to build leaderboard", err)
		return
	}
	h.sendJSON(w, resp, http.StatusOK)
}

// Enroll обрабатывает POST /api/contests/{id}/enroll
func (h *ContestHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := GetUserID(ctx)

	contest, ok := h.contest(w, r)
	if !ok {
		return
	}

	var req api.EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TeamID == "" {
		h.sendError(w, "team_id is required", http.StatusBadRequest)
		return
	}

	if !contest.OpenForEnrollment() {
		h.sendError(w, "Contest is not open for enrollment", http.StatusBadRequest)
		return
	}

	team, err := h.teams.GetTeam(ctx, req.TeamID)
	if err != nil || team.UserID != userID {
		if err == nil || errors.Is(err, storage.ErrTeamNotFound) {
			h.sendError(w, "Team not found", http.StatusNotFound)
			return
		}
		h.internalError(w, r, "failed to get team", err)
		return
	}

	if len(contest.AllowedTeams) > 0 {
		players, err := h.contests.GetPlayers(ctx, team.PlayerIDs)
		if err != nil {
			h.internalError(w, r, "failed to load players", err)
			return
		}
		for _, p := range players {
			if p.Team != nil && !slices.Contains(contest.AllowedTeams, *p.Team) {
				h.sendError(w, fmt.Sprintf("%s plays for %s, which is not part of this contest", p.Name, *p.Team), http.StatusBadRequest)
				return
			}
		}
	}

	enrollment := &models.Enrollment{
		ID:         uuid.New().String(),
		TeamID:     team.ID,
		UserID:     userID,
		ContestID:  contest.ID,
		Status:     models.EnrollmentActive,
		EnrolledAt: time.Now(),
	}
	if err := h.enrollments.Enroll(ctx, enrollment); err != nil {
		if errors.Is(err, storage.ErrAlreadyEnrolled) {
			h.sendError(w, "Team is already enrolled in this contest", http.StatusConflict)
			return
		}
		h.internalError(w, r, "failed to enroll", err)
		return
	}

	// Команда без конкурса привязывается к нему
	if team.ContestID == nil {
		team.ContestID = &contest.ID
		team.UpdatedAt = time.Now()
		if err := h.teams.UpdateTeam(ctx, team); err != nil {
			h.internalError(w, r, "failed to attach team to contest", err)
			return
		}
	}

	h.logger.InfoContext(ctx, "team enrolled",
		slog.String("contest_id", contest.ID),
		slog.String("team_id", team.ID),
		slog.String("user_id", userID),
	)
	h.sendJSON(w, enrollmentDTO(enrollment), http.StatusCreated)
}

// MyEnrollments обрабатывает GET /api/contests/enrollments/me
func (h *ContestHandler) MyEnrollments(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())

	enrollments, err := h.enrollments.ListUserEnrollments(r.Context(), userID)
	if err != nil {
		h.internalError(w, r, "failed to list enrollments", err)
		return
	}

	resp := make([]api.Enrollment, 0, len(enrollments))
	for _, e := range enrollments {
		resp = append(resp, enrollmentDTO(e))
	}
	h.sendJSON(w, resp, http.StatusOK)
}

// ContestTeam обрабатывает GET /api/contests/{id}/teams/{teamId}
func (h *ContestHandler) ContestTeam(w http.ResponseWriter, r *http.Request) {
	contest, ok := h.contest(w, r)
	if !ok {
		return
	}

	team, err := h.scorer.ContestTeam(r.Context(), contest.ID, mux.Vars(r)["teamId"])
	if err != nil {
		if errors.Is(err, storage.ErrTeamNotFound) {
			h.sendError(w, "Team is not part of this contest", http.StatusNotFound)
			return
		}
		h.internalError(w, r, "failed to load contest team", err)
		return
	}
	h.sendJSON(w, team, http.StatusOK)
}

// contest загружает конкурс из {id}; при ошибке ответ уже отправлен
func (h *ContestHandler) contest(w http.ResponseWriter, r *http.Request) (*models.Contest, bool) {
	contest, err := h.contests.GetContest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, storage.ErrContestNotFound) {
			h.sendError(w, "Contest not found", http.StatusNotFound)
			return nil, false
		}
		h.internalError(w, r, "failed to get contest", err)
		return nil, false
	}
	return contest, true
}
