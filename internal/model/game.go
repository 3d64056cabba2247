package model

import (
	"strings"
	"time"
)

// GameID uniquely identifies a game
type GameID string

// Roster size limits
const (
	MinPlayers = 2
	MaxPlayers = 5
)

// Phase represents the current state of a game
type Phase string

const (
	PhaseLobby             Phase = "lobby"              // Collecting players
	PhaseAwaitingDirection Phase = "awaiting_direction" // Current player picks left or right
	PhaseAwaitingMove      Phase = "awaiting_move"      // Current player enters letter and word
	PhaseFinished          Phase = "finished"           // Winner declared
	PhaseAbandoned         Phase = "abandoned"          // Nobody left
)

// Direction is the side of the sequence a new letter is added to
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// ParseDirection converts user input into a Direction
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case DirectionLeft:
		return DirectionLeft, nil
	case DirectionRight:
		return DirectionRight, nil
	}
	return "", ErrInvalidDirection
}

// ChatKey routes effects to a chat and optional topic thread
type ChatKey struct {
	ChatID   int64 `json:"chat_id"`
	ThreadID int   `json:"thread_id,omitempty"`
}

// IsZero reports whether the game is not bound to a chat
func (k ChatKey) IsZero() bool {
	return k.ChatID == 0 && k.ThreadID == 0
}

// TurnRecord is one accepted move
type TurnRecord struct {
	PlayerID  PlayerID  `json:"player_id"`
	Letter    string    `json:"letter"`
	Word      string    `json:"word"`
	Direction Direction `json:"direction"`
	Timestamp time.Time `json:"timestamp"`
}

// Game is the aggregate root for one match, from lobby to result
type Game struct {
	ID         GameID
	HostID     PlayerID
	Chat       ChatKey
	JoinCode   string
	Phase      Phase
	HasStarted bool

	BaseLetter       string
	Sequence         string
	CurrentPlayerID  PlayerID
	LastDirection    Direction
	PendingDirection Direction

	Players       map[PlayerID]*Player
	PlayersActive []PlayerID // Join order in the lobby, fixed turn order once started
	PlayersOut    []PlayerID // Elimination order
	WordsUsed     []TurnRecord

	Winner    PlayerID
	CreatedAt time.Time
	StartedAt time.Time
}

// NewGame creates a lobby-phase game hosted by the given player
func NewGame(id GameID, host PlayerID, hostName string, chat ChatKey, joinCode string, now time.Time) *Game {
	return &Game{
		ID:       id,
		HostID:   host,
		Chat:     chat,
		JoinCode: joinCode,
		Phase:    PhaseLobby,
		Players: map[PlayerID]*Player{
			host: {ID: host, Name: hostName, IsHost: true},
		},
		PlayersActive: []PlayerID{host},
		CreatedAt:     now,
	}
}

// Player returns the participant with the given ID
func (g *Game) Player(id PlayerID) (*Player, bool) {
	p, ok := g.Players[id]
	return p, ok
}

// Roster returns participants in turn order
func (g *Game) Roster() []*Player {
	roster := make([]*Player, 0, len(g.PlayersActive))
	for _, id := range g.PlayersActive {
		if p, ok := g.Players[id]; ok {
			roster = append(roster, p)
		}
	}
	return roster
}

// AlivePlayers returns the non-eliminated players in turn order
func (g *Game) AlivePlayers() []PlayerID {
	var alive []PlayerID
	for _, id := range g.PlayersActive {
		if p, ok := g.Players[id]; ok && !p.IsEliminated {
			alive = append(alive, id)
		}
	}
	return alive
}

// IsTerminal reports whether the game has concluded
func (g *Game) IsTerminal() bool {
	return g.Phase == PhaseFinished || g.Phase == PhaseAbandoned
}

// InTurn reports whether a turn is currently running
func (g *Game) InTurn() bool {
	return g.Phase == PhaseAwaitingDirection || g.Phase == PhaseAwaitingMove
}

// WordUsed reports whether a word was already played by anyone
func (g *Game) WordUsed(word string) bool {
	for _, rec := range g.WordsUsed {
		if rec.Word == word {
			return true
		}
	}
	return false
}

// NextPlayerAfter scans the fixed turn order cyclically, starting just after
// the given player, for the next non-eliminated player.
func (g *Game) NextPlayerAfter(id PlayerID) (PlayerID, bool) {
	n := len(g.PlayersActive)
	if n == 0 {
		return "", false
	}
	start := -1
	for i, pid := range g.PlayersActive {
		if pid == id {
			start = i
			break
		}
	}
	for step := 1; step <= n; step++ {
		pid := g.PlayersActive[(start+step+n)%n]
		if p, ok := g.Players[pid]; ok && !p.IsEliminated {
			return pid, true
		}
	}
	return "", false
}

// Clone returns a deep copy safe to hand outside the engine
func (g *Game) Clone() *Game {
	c := *g
	c.Players = make(map[PlayerID]*Player, len(g.Players))
	for id, p := range g.Players {
		cp := *p
		c.Players[id] = &cp
	}
	c.PlayersActive = append([]PlayerID(nil), g.PlayersActive...)
	c.PlayersOut = append([]PlayerID(nil), g.PlayersOut...)
	c.WordsUsed = append([]TurnRecord(nil), g.WordsUsed...)
	return &c
}
