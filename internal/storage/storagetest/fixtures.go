// Package storagetest holds fixtures shared by storage backend tests.
package storagetest

import (
	"time"

	"github.com/mcoot/baldagame/internal/model"
)

// Snapshot returns a started three player game with one recorded turn and one elimination
func Snapshot(id model.GameID) *model.Snapshot {
	started := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &model.Snapshot{
		GameID:          id,
		HostID:          "alice",
		ChatID:          -100123,
		ThreadID:        7,
		Sequence:        "ко",
		BaseLetter:      "к",
		CurrentPlayerID: "bob",
		LastDirection:   model.DirectionRight,
		Players: []model.Player{
			{ID: "alice", Name: "Alice", IsHost: true},
			{ID: "bob", Name: "Bob", HasPassed: true},
			{ID: "carol", Name: "Carol", IsEliminated: true},
		},
		PlayersActive: []model.PlayerID{"alice", "bob", "carol"},
		PlayersOut:    []model.PlayerID{"carol"},
		WordsUsed: []model.TurnRecord{
			{PlayerID: "alice", Letter: "о", Word: "кот", Direction: model.DirectionRight, Timestamp: started.Add(10 * time.Second)},
		},
		HasPassed:  map[model.PlayerID]bool{"alice": false, "bob": true, "carol": false},
		HasStarted: true,
		JoinCode:   "JOIN" + string(id),
		CreatedAt:  started.Add(-time.Minute),
		StartedAt:  started,
	}
}
