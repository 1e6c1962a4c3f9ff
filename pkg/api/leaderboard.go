package api

// LeaderboardEntry is one ranked row as sent by the server.
// RankChange may be null or missing; both decode to nil.
type LeaderboardEntry struct {
	RankChange  *int    `json:"rankChange,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
	TeamID      *string `json:"teamId,omitempty"`
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	TeamName    string  `json:"teamName"`
	Rank        int     `json:"rank"`
	Points      float64 `json:"points"`
}

// LeaderboardResponse представляет ответ GET /api/contests/{id}/leaderboard
type LeaderboardResponse struct {
	CurrentUserEntry *LeaderboardEntry  `json:"currentUserEntry,omitempty"`
	Entries          []LeaderboardEntry `json:"entries"`
}

// LeaderboardParams are the paging parameters of the leaderboard endpoint.
type LeaderboardParams struct {
	Skip  int
	Limit int
}
