// Package stats summarizes finished matches.
package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/mcoot/baldagame/internal/model"
)

// Collect aggregates the end-of-game numbers for a match at the given moment
func Collect(g *model.Game, now time.Time) model.GameStats {
	start := g.StartedAt
	if start.IsZero() {
		start = g.CreatedAt
	}
	duration := now.Sub(start)
	if duration < 0 {
		duration = 0
	}

	unique := make(map[string]struct{}, len(g.WordsUsed))
	for _, rec := range g.WordsUsed {
		unique[rec.Word] = struct{}{}
	}

	eliminated := make([]string, 0, len(g.PlayersOut))
	for _, id := range g.PlayersOut {
		if p, ok := g.Player(id); ok && p.Name != "" {
			eliminated = append(eliminated, p.Name)
		}
	}

	var winnerName string
	if p, ok := g.Player(g.Winner); ok {
		winnerName = p.Name
	}

	return model.GameStats{
		TotalTurns:    len(g.WordsUsed),
		UniqueWords:   len(unique),
		Duration:      duration.Truncate(time.Second),
		FinalSequence: finalSequence(g),
		Eliminated:    eliminated,
		WinnerName:    winnerName,
	}
}

func finalSequence(g *model.Game) string {
	switch {
	case g.Sequence != "":
		return strings.ToUpper(g.Sequence)
	case g.BaseLetter != "":
		return strings.ToUpper(g.BaseLetter)
	}
	return "—"
}

// FormatDuration renders a duration as 1ч05м03с, 5м03с or 7с
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dч%02dм%02dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм%02dс", minutes, seconds)
	}
	return fmt.Sprintf("%dс", seconds)
}
