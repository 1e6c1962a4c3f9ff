package api

import "time"

// TeamInput представляет тело запроса на создание или обновление команды
type TeamInput struct {
	ContestID     *string  `json:"contest_id,omitempty"`
	TeamName      string   `json:"team_name"`
	CaptainID     string   `json:"captain_id"`
	ViceCaptainID string   `json:"vice_captain_id"`
	PlayerIDs     []string `json:"player_ids"`
}

// TeamUpdate is a partial update for PUT /api/teams/{id}; nil fields are omitted.
type TeamUpdate struct {
	TeamName      *string  `json:"team_name,omitempty"`
	CaptainID     *string  `json:"captain_id,omitempty"`
	ViceCaptainID *string  `json:"vice_captain_id,omitempty"`
	ContestID     *string  `json:"contest_id,omitempty"`
	PlayerIDs     []string `json:"player_ids,omitempty"`
}

// Team представляет команду пользователя
type Team struct {
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	CaptainID     *string   `json:"captain_id"`
	ViceCaptainID *string   `json:"vice_captain_id"`
	Rank          *int      `json:"rank"`
	RankChange    *int      `json:"rank_change"`
	ContestID     *string   `json:"contest_id"`
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	TeamName      string    `json:"team_name"`
	PlayerIDs     []string  `json:"player_ids"`
	TotalPoints   float64   `json:"total_points"`
	TotalValue    float64   `json:"total_value"`
}

// TeamListResponse представляет ответ GET /api/teams/
type TeamListResponse struct {
	Teams []Team `json:"teams"`
	Total int    `json:"total"`
}
