package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedGame() *Game {
	g := threePlayerGame()
	g.HasStarted = true
	g.Phase = PhaseAwaitingMove
	g.BaseLetter = "к"
	g.Sequence = "ко"
	g.CurrentPlayerID = "b"
	g.PendingDirection = DirectionLeft
	g.LastDirection = DirectionRight
	g.StartedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	g.Players["c"].HasPassed = true
	g.WordsUsed = []TurnRecord{{PlayerID: "a", Letter: "о", Word: "кот", Direction: DirectionRight}}
	return g
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := startedGame()

	data, err := json.Marshal(NewSnapshot(g))
	require.NoError(t, err)

	var s Snapshot
	require.NoError(t, json.Unmarshal(data, &s))

	restored, err := s.Game()
	require.NoError(t, err)

	assert.Equal(t, PhaseAwaitingMove, restored.Phase)
	assert.Equal(t, g.Sequence, restored.Sequence)
	assert.Equal(t, g.PlayersActive, restored.PlayersActive)
	assert.Equal(t, g.PendingDirection, restored.PendingDirection)
	assert.Equal(t, g.LastDirection, restored.LastDirection)
	assert.True(t, restored.Players["c"].HasPassed)
	assert.True(t, restored.Players["a"].IsHost)
	assert.Equal(t, g.Chat, restored.Chat)
	assert.True(t, restored.WordUsed("кот"))
}

func TestSnapshotFields(t *testing.T) {
	s := NewSnapshot(startedGame())

	assert.Equal(t, DirectionLeft, s.Direction)
	assert.Equal(t, map[PlayerID]bool{"a": false, "b": false, "c": true}, s.HasPassed)
	assert.NotNil(t, s.PlayersOut)
	require.Len(t, s.Players, 3)
	assert.Equal(t, PlayerID("a"), s.Players[0].ID)
}

func TestSnapshotPhaseDerivation(t *testing.T) {
	lobby := NewSnapshot(threePlayerGame())
	g, err := lobby.Game()
	require.NoError(t, err)
	assert.Equal(t, PhaseLobby, g.Phase)

	s := NewSnapshot(startedGame())
	s.Direction = ""
	g, err = s.Game()
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingDirection, g.Phase)
}

func TestSnapshotPassMapIsHonoured(t *testing.T) {
	s := NewSnapshot(startedGame())
	s.Players[0].HasPassed = false
	s.HasPassed["a"] = true

	g, err := s.Game()
	require.NoError(t, err)
	assert.True(t, g.Players["a"].HasPassed)
}

func TestInvalidSnapshots(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"missing id", func(s *Snapshot) { s.GameID = "" }},
		{"no players", func(s *Snapshot) { s.Players = nil }},
		{"started without current player", func(s *Snapshot) { s.CurrentPlayerID = "" }},
		{"unknown current player", func(s *Snapshot) { s.CurrentPlayerID = "zz" }},
		{"eliminated current player", func(s *Snapshot) { s.Players[1].IsEliminated = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSnapshot(startedGame())
			tt.mutate(s)
			_, err := s.Game()
			assert.ErrorIs(t, err, ErrInvalidSnapshot)
		})
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	s := NewSnapshot(startedGame())
	c := s.Clone()

	c.Players[0].Name = "Changed"
	c.HasPassed["a"] = true

	assert.Equal(t, "Alice", s.Players[0].Name)
	assert.False(t, s.HasPassed["a"])
}
