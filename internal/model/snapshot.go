package model

import (
	"errors"
	"time"
)

// ErrInvalidSnapshot is returned when a stored snapshot cannot describe a live game
var ErrInvalidSnapshot = errors.New("invalid game snapshot")

// Snapshot is the flat persisted form of a live game. Timer state is never
// part of it; timers are recreated from CurrentPlayerID and HasStarted.
type Snapshot struct {
	GameID          GameID            `json:"game_id"`
	HostID          PlayerID          `json:"host_id"`
	ChatID          int64             `json:"chat_id"`
	ThreadID        int               `json:"thread_id"`
	Sequence        string            `json:"sequence"`
	BaseLetter      string            `json:"base_letter"`
	CurrentPlayerID PlayerID          `json:"current_player_id"`
	Direction       Direction         `json:"direction"`
	LastDirection   Direction         `json:"last_direction"`
	Players         []Player          `json:"players"`
	PlayersActive   []PlayerID        `json:"players_active"`
	PlayersOut      []PlayerID        `json:"players_out"`
	WordsUsed       []TurnRecord      `json:"words_used"`
	HasPassed       map[PlayerID]bool `json:"has_passed"`
	HasStarted      bool              `json:"has_started"`
	JoinCode        string            `json:"join_code"`
	CreatedAt       time.Time         `json:"created_at"`
	StartedAt       time.Time         `json:"started_at"`
}

// NewSnapshot captures the persistent state of a game
func NewSnapshot(g *Game) *Snapshot {
	s := &Snapshot{
		GameID:          g.ID,
		HostID:          g.HostID,
		ChatID:          g.Chat.ChatID,
		ThreadID:        g.Chat.ThreadID,
		Sequence:        g.Sequence,
		BaseLetter:      g.BaseLetter,
		CurrentPlayerID: g.CurrentPlayerID,
		Direction:       g.PendingDirection,
		LastDirection:   g.LastDirection,
		Players:         make([]Player, 0, len(g.Players)),
		PlayersActive:   append([]PlayerID{}, g.PlayersActive...),
		PlayersOut:      append([]PlayerID{}, g.PlayersOut...),
		WordsUsed:       append([]TurnRecord{}, g.WordsUsed...),
		HasPassed:       make(map[PlayerID]bool, len(g.Players)),
		HasStarted:      g.HasStarted,
		JoinCode:        g.JoinCode,
		CreatedAt:       g.CreatedAt,
		StartedAt:       g.StartedAt,
	}
	for _, p := range g.Roster() {
		s.Players = append(s.Players, *p)
		s.HasPassed[p.ID] = p.HasPassed
	}
	return s
}

// Game rebuilds the aggregate from a snapshot
func (s *Snapshot) Game() (*Game, error) {
	if s.GameID == "" || len(s.Players) == 0 {
		return nil, ErrInvalidSnapshot
	}

	g := &Game{
		ID:               s.GameID,
		HostID:           s.HostID,
		Chat:             ChatKey{ChatID: s.ChatID, ThreadID: s.ThreadID},
		JoinCode:         s.JoinCode,
		HasStarted:       s.HasStarted,
		BaseLetter:       s.BaseLetter,
		Sequence:         s.Sequence,
		CurrentPlayerID:  s.CurrentPlayerID,
		LastDirection:    s.LastDirection,
		PendingDirection: s.Direction,
		Players:          make(map[PlayerID]*Player, len(s.Players)),
		PlayersActive:    append([]PlayerID{}, s.PlayersActive...),
		PlayersOut:       append([]PlayerID{}, s.PlayersOut...),
		WordsUsed:        append([]TurnRecord{}, s.WordsUsed...),
		CreatedAt:        s.CreatedAt,
		StartedAt:        s.StartedAt,
	}
	for _, p := range s.Players {
		p := p
		// Older snapshots kept the pass flag in a separate map only
		p.HasPassed = p.HasPassed || s.HasPassed[p.ID]
		g.Players[p.ID] = &p
	}

	switch {
	case !s.HasStarted:
		g.Phase = PhaseLobby
	case s.CurrentPlayerID == "":
		return nil, ErrInvalidSnapshot
	case s.Direction != "":
		g.Phase = PhaseAwaitingMove
	default:
		g.Phase = PhaseAwaitingDirection
	}

	if g.InTurn() {
		current, ok := g.Players[g.CurrentPlayerID]
		if !ok || current.IsEliminated {
			return nil, ErrInvalidSnapshot
		}
	}
	return g, nil
}

// Chat returns the routing key stored in the snapshot
func (s *Snapshot) Chat() ChatKey {
	return ChatKey{ChatID: s.ChatID, ThreadID: s.ThreadID}
}

// Clone returns a deep copy of the snapshot
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	c.Players = append([]Player(nil), s.Players...)
	c.PlayersActive = append([]PlayerID(nil), s.PlayersActive...)
	c.PlayersOut = append([]PlayerID(nil), s.PlayersOut...)
	c.WordsUsed = append([]TurnRecord(nil), s.WordsUsed...)
	if s.HasPassed != nil {
		c.HasPassed = make(map[PlayerID]bool, len(s.HasPassed))
		for id, passed := range s.HasPassed {
			c.HasPassed[id] = passed
		}
	}
	return &c
}
