package handlers

import (
	"github.com/iudanet/fantasy11/internal/models"
	"github.com/iudanet/fantasy11/pkg/api"
)

func userDTO(u *models.User) api.User {
	return api.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Mobile:    u.Mobile,
		AvatarURL: u.AvatarURL,
		IsAdmin:   u.IsAdmin,
	}
}

func contestDTO(c *models.Contest) api.Contest {
	return api.Contest{
		ID:           c.ID,
		Code:         c.Code,
		Name:         c.Name,
		Description:  c.Description,
		StartAt:      c.StartAt,
		EndAt:        c.EndAt,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Status:       api.ContestStatus(c.Status),
		Visibility:   api.ContestVisibility(c.Visibility),
		PointsScope:  api.PointsScope(c.PointsScope),
		ContestType:  api.ContestType(c.ContestType),
		AllowedTeams: c.AllowedTeams,
	}
}

func enrollmentDTO(e *models.Enrollment) api.Enrollment {
	return api.Enrollment{
		ID:         e.ID,
		TeamID:     e.TeamID,
		UserID:     e.UserID,
		ContestID:  e.ContestID,
		Status:     api.EnrollmentStatus(e.Status),
		EnrolledAt: e.EnrolledAt,
		RemovedAt:  e.RemovedAt,
	}
}

func teamDTO(t *models.Team, score teamScore) api.Team {
	players := t.PlayerIDs
	if players == nil {
		players = []string{}
	}
	return api.Team{
		ID:            t.ID,
		UserID:        t.UserID,
		TeamName:      t.TeamName,
		PlayerIDs:     players,
		CaptainID:     t.CaptainID,
		ViceCaptainID: t.ViceCaptainID,
		ContestID:     t.ContestID,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		TotalPoints:   score.points,
		TotalValue:    score.value,
		Rank:          score.rank,
		RankChange:    score.rankChange,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
