// Package leaderboard turns leaderboard responses into a render-ready board:
// server order is kept, the podium and the pinned "your position" row are
// derived, points and rank changes are formatted for display.
package leaderboard

import (
	"time"

	pkgapi "github.com/iudanet/fantasy11/pkg/api"
)

// PinThreshold is the last rank that is visible without the pinned row.
const PinThreshold = 8

// Tier is the podium styling of a rank.
type Tier int

const (
	TierNone Tier = iota
	TierGold
	TierSilver
	TierBronze
)

func (t Tier) String() string {
	switch t {
	case TierGold:
		return "gold"
	case TierSilver:
		return "silver"
	case TierBronze:
		return "bronze"
	default:
		return ""
	}
}

// TierForRank returns the tier of a rank. Only ranks 1, 2 and 3 have one.
func TierForRank(rank int) Tier {
	switch rank {
	case 1:
		return TierGold
	case 2:
		return TierSilver
	case 3:
		return TierBronze
	default:
		return TierNone
	}
}

// Entry is one normalized leaderboard row.
type Entry struct {
	RankChange    *int // nil - изменения нет (null или поле отсутствует)
	Username      string
	DisplayName   string
	TeamName      string
	AvatarURL     string
	TeamID        string
	Rank          int
	Points        float64
	IsCurrentUser bool
}

// PodiumSlot is an entry placed on the podium.
type PodiumSlot struct {
	Entry Entry
	Tier  Tier
}

// Board is the render-ready leaderboard.
type Board struct {
	FetchedAt   time.Time
	CurrentUser *Entry
	// Pinned duplicates CurrentUser when it ranks below PinThreshold.
	Pinned  *Entry
	Entries []Entry
	// Podium holds entries[1], entries[0], entries[2] in display order.
	Podium []PodiumSlot
	// Stale is set when the board came from the offline cache.
	Stale bool
}

// Normalize builds a Board from a server response. Entries keep the server
// order: the client never sorts by rank or points.
func Normalize(resp pkgapi.LeaderboardResponse) Board {
	var board Board

	currentUsername := ""
	if resp.CurrentUserEntry != nil {
		cu := normalizeEntry(*resp.CurrentUserEntry, "")
		cu.IsCurrentUser = true
		board.CurrentUser = &cu
		currentUsername = cu.Username
	}

	board.Entries = make([]Entry, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		board.Entries = append(board.Entries, normalizeEntry(e, currentUsername))
	}

	if len(board.Entries) >= 3 {
		board.Podium = []PodiumSlot{
			podiumSlot(board.Entries[1]),
			podiumSlot(board.Entries[0]),
			podiumSlot(board.Entries[2]),
		}
	}

	// Дублирование строки намеренное: своя позиция видна без прокрутки
	if board.CurrentUser != nil && board.CurrentUser.Rank > PinThreshold {
		pinned := *board.CurrentUser
		board.Pinned = &pinned
	}

	return board
}

func normalizeEntry(e pkgapi.LeaderboardEntry, currentUsername string) Entry {
	out := Entry{
		Rank:          e.Rank,
		Username:      e.Username,
		DisplayName:   e.DisplayName,
		TeamName:      e.TeamName,
		Points:        e.Points,
		IsCurrentUser: currentUsername != "" && e.Username == currentUsername,
	}
	if out.DisplayName == "" {
		out.DisplayName = e.Username
	}
	if e.RankChange != nil {
		v := *e.RankChange
		out.RankChange = &v
	}
	if e.AvatarURL != nil {
		out.AvatarURL = *e.AvatarURL
	}
	if e.TeamID != nil {
		out.TeamID = *e.TeamID
	}
	return out
}

func podiumSlot(e Entry) PodiumSlot {
	return PodiumSlot{Entry: e, Tier: TierForRank(e.Rank)}
}

// CanViewTeam reports whether the entry links to its team page: the entry
// must carry a team id and the contest must be active or completed.
func CanViewTeam(contest pkgapi.Contest, e Entry) bool {
	return e.TeamID != "" && TeamsVisible(contest)
}

// TeamsVisible reports whether team lineups of the contest may be opened.
func TeamsVisible(contest pkgapi.Contest) bool {
	return contest.Status == pkgapi.ContestActive || contest.Status == pkgapi.ContestCompleted
}
