// Package seed fills an empty dev server database with demo contests,
// players, users and enrolled teams.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/fantasy11/internal/models"
	"github.com/iudanet/fantasy11/internal/server/handlers"
	"github.com/iudanet/fantasy11/internal/server/storage"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "fantasy11"

// DemoMobile is the mobile number of the "demo" user, for password reset.
const DemoMobile = "+919876543210"

// Contest IDs of the seeded contests.
const (
	ActiveContestID    = "ipl-day-1"
	CompletedContestID = "ashes-2025"
	DraftContestID     = "wc-final"
	PausedContestID    = "weekend-cup"
	PrivateContestID   = "office-league"
)

type player struct {
	id, name, team, slot string
	price, points        float64
}

var players = []player{
	{"p01", "R. Sharma", "IND", "batter", 10.5, 62},
	{"p02", "S. Gill", "IND", "batter", 9.5, 48},
	{"p03", "V. Kohli", "IND", "batter", 11, 75},
	{"p04", "R. Pant", "IND", "keeper", 9, 41},
	{"p05", "H. Pandya", "IND", "all-rounder", 9.5, 55},
	{"p06", "R. Jadeja", "IND", "all-rounder", 9, 58},
	{"p07", "J. Bumrah", "IND", "bowler", 10, 70},
	{"p08", "K. Yadav", "IND", "bowler", 8.5, 44},
	{"p09", "T. Head", "AUS", "batter", 10, 66},
	{"p10", "S. Smith", "AUS", "batter", 9.5, 39},
	{"p11", "M. Labuschagne", "AUS", "batter", 9, 35},
	{"p12", "A. Carey", "AUS", "keeper", 8, 28},
	{"p13", "M. Marsh", "AUS", "all-rounder", 9, 47},
	{"p14", "P. Cummins", "AUS", "bowler", 10, 61},
	{"p15", "M. Starc", "AUS", "bowler", 9.5, 53},
	{"p16", "N. Lyon", "AUS", "bowler", 8.5, 42},
	{"p17", "J. Root", "ENG", "batter", 10.5, 68},
	{"p18", "H. Brook", "ENG", "batter", 9.5, 57},
	{"p19", "B. Stokes", "ENG", "all-rounder", 10, 50},
	{"p20", "J. Buttler", "ENG", "keeper", 9.5, 46},
	{"p21", "M. Wood", "ENG", "bowler", 8.5, 38},
	{"p22", "J. Anderson", "ENG", "bowler", 9, 49},
}

type contest struct {
	id, code, name, description string
	status, visibility, scope   string
	contestType                 string
	start, end                  time.Duration // относительно момента запуска
	allowed                     []string
}

var contests = []contest{
	{ActiveContestID, "IPL-D1", "Premier Day 1", "One day of T20 action. Captains score double.",
		"active", "public", "time_window", "daily", -6 * time.Hour, 18 * time.Hour, []string{"IND", "AUS", "ENG"}},
	{CompletedContestID, "ASHES", "The Ashes", "Five tests, one urn.",
		"completed", "public", "snapshot", "full", -60 * 24 * time.Hour, -10 * 24 * time.Hour, []string{"AUS", "ENG"}},
	{DraftContestID, "WC-FINAL", "World Cup Final", "",
		"draft", "public", "time_window", "daily", 7 * 24 * time.Hour, 8 * 24 * time.Hour, nil},
	{PausedContestID, "WKND", "Weekend Cup", "Paused for rain.",
		"paused", "public", "time_window", "full", -2 * 24 * time.Hour, 5 * 24 * time.Hour, nil},
	{PrivateContestID, "OFFICE", "Office League", "Invite only.",
		"active", "private", "snapshot", "full", -24 * time.Hour, 30 * 24 * time.Hour, nil},
}

type user struct {
	username, email, fullName, mobile string
}

var users = []user{
	{"demo", "demo@fantasy11.dev", "Demo User", DemoMobile},
	{"virat_fan", "virat@fantasy11.dev", "Virat Fan", ""},
	{"aussie_ace", "ace@fantasy11.dev", "", ""},
	{"spin_king", "spin@fantasy11.dev", "Spin King", ""},
	{"stumped", "stumped@fantasy11.dev", "Stumped", ""},
}

type team struct {
	owner, name   string
	playerIDs     []string
	captain, vice string
	enrollIn      []string
	previousRank  int // 0 - нет прошлого снимка
}

var teams = []team{
	{"demo", "Demo Dashers", []string{"p01", "p03", "p07", "p09", "p14", "p17"}, "p03", "p07",
		[]string{ActiveContestID}, 3},
	{"virat_fan", "Cover Drive XI", []string{"p02", "p03", "p05", "p06", "p08", "p18"}, "p03", "p06",
		[]string{ActiveContestID}, 1},
	{"aussie_ace", "Baggy Greens", []string{"p09", "p10", "p13", "p14", "p15", "p16"}, "p09", "p14",
		[]string{ActiveContestID, CompletedContestID}, 2},
	{"spin_king", "Turn And Burn", []string{"p06", "p08", "p16", "p17", "p19", "p22"}, "p17", "p16",
		[]string{ActiveContestID}, 0},
	{"stumped", "Behind The Stumps", []string{"p04", "p12", "p20", "p11", "p21", "p05"}, "p20", "p04",
		[]string{ActiveContestID}, 4},
	{"demo", "Urn Raiders", []string{"p17", "p18", "p19", "p14", "p15", "p22"}, "p17", "p19",
		[]string{CompletedContestID}, 2},
	{"spin_king", "Swing Kings", []string{"p09", "p19", "p20", "p21", "p16", "p15"}, "p15", "p21",
		[]string{CompletedContestID}, 1},
}

// Demo fills store with the demo data set. bcryptCost is used for the
// shared DemoPassword hash. It must run on an empty database.
func Demo(ctx context.Context, store storage.Storage, bcryptCost int, logger *slog.Logger) error {
	now := time.Now().UTC().Truncate(time.Second)

	for _, p := range players {
		err := store.CreatePlayer(ctx, &models.Player{
			ID:     p.id,
			Name:   p.name,
			Team:   &p.team,
			Slot:   &p.slot,
			Price:  p.price,
			Points: p.points,
		})
		if err != nil {
			return fmt.Errorf("seed player %s: %w", p.id, err)
		}
	}

	for _, c := range contests {
		m := &models.Contest{
			ID:           c.id,
			Code:         c.code,
			Name:         c.name,
			StartAt:      now.Add(c.start),
			EndAt:        now.Add(c.end),
			Status:       c.status,
			Visibility:   c.visibility,
			PointsScope:  c.scope,
			ContestType:  c.contestType,
			AllowedTeams: c.allowed,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if c.description != "" {
			m.Description = &c.description
		}
		if err := store.CreateContest(ctx, m); err != nil {
			return fmt.Errorf("seed contest %s: %w", c.id, err)
		}
	}

	// Один хеш на всех: bcrypt медленный, а пароль общий
	hash, err := handlers.HashPassword(DemoPassword, bcryptCost)
	if err != nil {
		return err
	}
	userIDs := make(map[string]string, len(users))
	for _, u := range users {
		m := &models.User{
			ID:           uuid.New().String(),
			Username:     u.username,
			Email:        u.email,
			PasswordHash: hash,
			FullName:     u.fullName,
			Mobile:       u.mobile,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := store.CreateUser(ctx, m); err != nil {
			return fmt.Errorf("seed user %s: %w", u.username, err)
		}
		userIDs[u.username] = m.ID
	}

	for i, t := range teams {
		captain, vice := t.captain, t.vice
		m := &models.Team{
			ID:            uuid.New().String(),
			UserID:        userIDs[t.owner],
			TeamName:      t.name,
			PlayerIDs:     t.playerIDs,
			CaptainID:     &captain,
			ViceCaptainID: &vice,
			CreatedAt:     now.Add(time.Duration(i) * time.Second),
			UpdatedAt:     now,
		}
		if len(t.enrollIn) > 0 {
			m.ContestID = &t.enrollIn[0]
		}
		if err := store.CreateTeam(ctx, m); err != nil {
			return fmt.Errorf("seed team %s: %w", t.name, err)
		}

		for _, contestID := range t.enrollIn {
			e := &models.Enrollment{
				ID:         uuid.New().String(),
				TeamID:     m.ID,
				UserID:     m.UserID,
				ContestID:  contestID,
				Status:     models.EnrollmentActive,
				EnrolledAt: now.Add(time.Duration(i) * time.Second),
			}
			if t.previousRank > 0 {
				rank := t.previousRank
				e.PreviousRank = &rank
			}
			if err := store.Enroll(ctx, e); err != nil {
				return fmt.Errorf("seed enrollment %s/%s: %w", contestID, t.name, err)
			}
		}
	}

	logger.InfoContext(ctx, "demo data loaded",
		slog.Int("players", len(players)),
		slog.Int("contests", len(contests)),
		slog.Int("users", len(users)),
		slog.Int("teams", len(teams)),
	)
	return nil
}
