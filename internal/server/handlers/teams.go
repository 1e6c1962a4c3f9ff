package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iudanet/fantasy11/internal/models"
	"github.com/iudanet/fantasy11/internal/server/storage"
	"github.com/iudanet/fantasy11/internal/validation"
	"github.com/iudanet/fantasy11/pkg/api"
)

// Пагинация списка команд
const (
	DefaultTeamPageSize = 20
	MaxTeamPageSize     = 100
)

// TeamHandler обслуживает команды текущего пользователя
type TeamHandler struct {
	responder
	teams    storage.TeamStorage
	contests storage.ContestStorage
	scorer   *Scorer
}

// NewTeamHandler создает handler команд
func NewTeamHandler(logger *slog.Logger, teams storage.TeamStorage, contests storage.ContestStorage, scorer *Scorer) *TeamHandler {
	return &TeamHandler{
		responder: responder{logger: logger},
		teams:     teams,
		contests:  contests,
		scorer:    scorer,
	}
}

// Create обрабатывает POST /api/teams/
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := GetUserID(ctx)

	var in api.TeamInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	now := time.Now()
	team := &models.Team{
		ID:            uuid.New().String(),
		UserID:        userID,
		TeamName:      strings.TrimSpace(in.TeamName),
		PlayerIDs:     in.PlayerIDs,
		CaptainID:     optional(in.CaptainID),
		ViceCaptainID: optional(in.ViceCaptainID),
		ContestID:     in.ContestID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if !h.checkTeam(w, r, team) {
		return
	}

	if err := h.teams.CreateTeam(ctx, team); err != nil {
		h.internalError(w, r, "failed to create team", err)
		return
	}

	h.logger.InfoContext(ctx, "team created", slog.String("team_id", team.ID), slog.String("user_id", userID))
	h.respondTeam(w, r, team, http.StatusCreated)
}

// List обрабатывает GET /api/teams/?skip=&limit=
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := GetUserID(ctx)

	skip, limit, ok := pageParams(r, DefaultTeamPageSize, MaxTeamPageSize)
	if !ok {
		h.sendError(w, "skip and limit must be non-negative numbers", http.StatusBadRequest)
		return
	}

	teams, total, err := h.teams.ListUserTeams(ctx, userID, skip, limit)
	if err != nil {
		h.internalError(w, r, "failed to list teams", err)
		return
	}

	resp := api.TeamListResponse{Teams: make([]api.Team, 0, len(teams)), Total: total}
	for _, team := range teams {
		score, err := h.scorer.ScoreWithRank(ctx, team)
		if err != nil {
			h.internalError(w, r, "failed to score team", err)
			return
		}
		resp.Teams = append(resp.Teams, teamDTO(team, score))
	}
	h.sendJSON(w, resp, http.StatusOK)
}

// Get обрабатывает GET /api/teams/{id}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	team, ok := h.ownTeam(w, r)
	if !ok {
		return
	}
	h.respondTeam(w, r, team, http.StatusOK)
}

// Update обрабатывает PUT /api/teams/{id}; отсутствующие поля не меняются
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	team, ok := h.ownTeam(w, r)
	if !ok {
		return
	}

	var upd api.TeamUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if upd.TeamName != nil {
		team.TeamName = strings.TrimSpace(*upd.TeamName)
	}
	if upd.PlayerIDs != nil {
		team.PlayerIDs = upd.PlayerIDs
	}
	if upd.CaptainID != nil {
		team.CaptainID = optional(*upd.CaptainID)
	}
	if upd.ViceCaptainID != nil {
		team.ViceCaptainID = optional(*upd.ViceCaptainID)
	}
	if upd.ContestID != nil {
		team.ContestID = optional(*upd.ContestID)
	}
	team.UpdatedAt = time.Now()

	if !h.checkTeam(w, r, team) {
		return
	}
	if err := h.teams.UpdateTeam(r.Context(), team); err != nil {
		h.internalError(w, r, "failed to update team", err)
		return
	}
	h.respondTeam(w, r, team, http.StatusOK)
}

// Rename обрабатывает PATCH /api/teams/{id}/rename?team_name=...
func (h *TeamHandler) Rename(w http.ResponseWriter, r *http.Request) {
	team, ok := h.ownTeam(w, r)
	if !ok {
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("team_name"))
	if err := validation.ValidateTeamName(name); err != nil {
		h.sendValidationError(w, err)
		return
	}

	team.TeamName = name
	team.UpdatedAt = time.Now()
	if err := h.teams.UpdateTeam(r.Context(), team); err != nil {
		h.internalError(w, r, "failed to rename team", err)
		return
	}
	h.respondTeam(w, r, team, http.StatusOK)
}

// Delete обрабатывает DELETE /api/teams/{id}
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	team, ok := h.ownTeam(w, r)
	if !ok {
		return
	}

	if err := h.teams.DeleteTeam(r.Context(), team.ID); err != nil {
		if errors.Is(err, storage.ErrTeamNotFound) {
			h.sendError(w, "Team not found", http.StatusNotFound)
			return
		}
		h.internalError(w, r, "failed to delete team", err)
		return
	}

	h.logger.InfoContext(r.Context(), "team deleted", slog.String("team_id", team.ID))
	h.sendJSON(w, api.MessageResponse{Message: "Team deleted"}, http.StatusOK)
}

// ownTeam загружает команду из {id}; чужая команда выглядит как отсутствующая
func (h *TeamHandler) ownTeam(w http.ResponseWriter, r *http.Request) (*models.Team, bool) {
	userID, _ := GetUserID(r.Context())

	team, err := h.teams.GetTeam(r.Context(), mux.Vars(r)["id"])
	if err != nil && !errors.Is(err, storage.ErrTeamNotFound) {
		h.internalError(w, r, "failed to get team", err)
		return nil, false
	}
	if err != nil || team.UserID != userID {
		h.sendError(w, "Team not found", http.StatusNotFound)
		return nil, false
	}
	return team, true
}

// checkTeam проверяет состав, игроков и конкурс; при ошибке ответ уже отправлен
func (h *TeamHandler) checkTeam(w http.ResponseWriter, r *http.Request, team *models.Team) bool {
	form := validation.TeamForm{
		TeamName:      team.TeamName,
		PlayerIDs:     team.PlayerIDs,
		CaptainID:     deref(team.CaptainID),
		ViceCaptainID: deref(team.ViceCaptainID),
	}
	if err := form.Validate(); err != nil {
		h.sendValidationError(w, err)
		return false
	}

	if _, err := h.contests.GetPlayers(r.Context(), team.PlayerIDs); err != nil {
		if errors.Is(err, storage.ErrPlayerNotFound) {
			h.sendError(w, "Unknown player in squad", http.StatusBadRequest)
			return false
		}
		h.internalError(w, r, "failed to load players", err)
		return false
	}

	if team.ContestID != nil {
		if _, err := h.contests.GetContest(r.Context(), *team.ContestID); err != nil {
			if errors.Is(err, storage.ErrContestNotFound) {
				h.sendError(w, "Contest not found", http.StatusBadRequest)
				return false
			}
			h.internalError(w, r, "failed to get contest", err)
			return false
		}
	}
	return true
}

func (h *TeamHandler) respondTeam(w http.ResponseWriter, r *http.Request, team *models.Team, status int) {
	score, err := h.scorer.ScoreWithRank(r.Context(), team)
	if err != nil {
		h.internalError(w, r, "failed to score team", err)
		return
	}
	h.sendJSON(w, teamDTO(team, score), status)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
