package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/baldagame/internal/model"
)

func TestCollect(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	g := model.NewGame("g1", "a", "Alice", model.ChatKey{}, "code", start.Add(-time.Minute))
	g.Players["b"] = &model.Player{ID: "b", Name: "Bob", IsEliminated: true}
	g.Players["c"] = &model.Player{ID: "c", Name: "Carol", IsEliminated: true}
	g.PlayersActive = append(g.PlayersActive, "b", "c")
	g.PlayersOut = []model.PlayerID{"c", "b"}
	g.StartedAt = start
	g.Sequence = "кра"
	g.Winner = "a"
	g.WordsUsed = []model.TurnRecord{
		{PlayerID: "a", Word: "краб"},
		{PlayerID: "b", Word: "икра"},
	}

	stats := Collect(g, start.Add(95*time.Second+300*time.Millisecond))

	assert.Equal(t, 2, stats.TotalTurns)
	assert.Equal(t, 2, stats.UniqueWords)
	assert.Equal(t, 95*time.Second, stats.Duration)
	assert.Equal(t, "КРА", stats.FinalSequence)
	assert.Equal(t, []string{"Carol", "Bob"}, stats.Eliminated)
	assert.Equal(t, "Alice", stats.WinnerName)
}

func TestCollectFallsBackToBaseLetter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	g := model.NewGame("g1", "a", "Alice", model.ChatKey{}, "code", now)

	assert.Equal(t, "—", Collect(g, now).FinalSequence)

	g.BaseLetter = "к"
	stats := Collect(g, now.Add(-time.Hour))
	assert.Equal(t, "К", stats.FinalSequence)
	assert.Equal(t, time.Duration(0), stats.Duration, "clock skew never yields a negative duration")
	assert.Empty(t, stats.Eliminated)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0с"},
		{7 * time.Second, "7с"},
		{5*time.Minute + 3*time.Second, "5м03с"},
		{time.Hour + 5*time.Minute + 3*time.Second, "1ч05м03с"},
		{-time.Second, "0с"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in), tt.in.String())
	}
}
