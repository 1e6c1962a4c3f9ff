package leaderboard

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/fantasy11/internal/client/iocli"
	pkgapi "github.com/iudanet/fantasy11/pkg/api"
)

func TestRender(t *testing.T) {
	list := []pkgapi.LeaderboardEntry{}
	for i := 1; i <= 10; i++ {
		list = append(list, entry(i, string(rune('a'+i-1)), float64(100-i)+0.12345))
	}
	list[1].RankChange = intPtr(2)
	list[2].TeamID = strPtr("t3")
	cu := list[9]
	board := Normalize(pkgapi.LeaderboardResponse{Entries: list, CurrentUserEntry: &cu})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, board, RenderOptions{Title: "Daily Cup", TeamLinks: true}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Daily Cup\n"))
	assert.Contains(t, out, "Podium")
	assert.Contains(t, out, "Your position")
	assert.Contains(t, out, "98.123")
	assert.Contains(t, out, "+2")

	// Подиум: 2-е место, 1-е, 3-е
	podium := out[strings.Index(out, "Podium"):strings.Index(out, "Rankings")]
	iSilver := strings.Index(podium, "Player b")
	iGold := strings.Index(podium, "Player a")
	iBronze := strings.Index(podium, "Player c")
	assert.Less(t, iSilver, iGold)
	assert.Less(t, iGold, iBronze)

	rankings := out[strings.Index(out, "Rankings"):strings.Index(out, "Your position")]
	assert.Less(t, strings.Index(rankings, "Player a"), strings.Index(rankings, "Player b"))
	assert.Contains(t, rankings, "> ")
	assert.Contains(t, rankings, "* ")

	// Закреплённая строка повторяет текущего пользователя
	assert.Equal(t, 2, strings.Count(out, "Player j"))
}

func TestRender_EmptyAndStale(t *testing.T) {
	board := Normalize(pkgapi.LeaderboardResponse{})
	board.Stale = true
	board.FetchedAt = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, board, RenderOptions{}))
	assert.Contains(t, buf.String(), "Offline")
	assert.Contains(t, buf.String(), "No entries yet.")
	assert.NotContains(t, buf.String(), "Podium")
}

func TestRender_WriteError(t *testing.T) {
	mockIO := &iocli.IOMock{
		WriteFunc: func(p []byte) (int, error) {
			return 0, errors.New("broken pipe")
		},
	}
	board := Normalize(pkgapi.LeaderboardResponse{})

	err := Render(mockIO, board, RenderOptions{Title: "Daily Cup"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
	// первая ошибка останавливает вывод
	require.Len(t, mockIO.WriteCalls(), 1)
	assert.Contains(t, string(mockIO.WriteCalls()[0].P), "Daily Cup")
}
