package response

import (
	"time"

	"github.com/mcoot/baldagame/internal/model"
	"github.com/mcoot/baldagame/internal/services/auth"
)

// Player represents a player identity in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// PlayerFromProfile converts a model.Profile to a response Player
func PlayerFromProfile(p *model.Profile) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromProfile(&s.Profile),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Participant is a player seat within a game
type Participant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	IsHost       bool   `json:"is_host"`
	HasPassed    bool   `json:"has_passed"`
	IsEliminated bool   `json:"is_eliminated"`
}

// Turn is an accepted move
type Turn struct {
	PlayerID  string    `json:"player_id"`
	Letter    string    `json:"letter"`
	Word      string    `json:"word"`
	Direction string    `json:"direction"`
	Timestamp time.Time `json:"timestamp"`
}

// Game represents a lobby or running game in API responses
type Game struct {
	ID               string        `json:"id"`
	Code             string        `json:"code"`
	Phase            string        `json:"phase"`
	HostID           string        `json:"host_id"`
	BaseLetter       string        `json:"base_letter,omitempty"`
	Sequence         string        `json:"sequence,omitempty"`
	CurrentPlayerID  string        `json:"current_player_id,omitempty"`
	LastDirection    string        `json:"last_direction,omitempty"`
	PendingDirection string        `json:"pending_direction,omitempty"`
	Players          []Participant `json:"players"`
	Eliminated       []string      `json:"eliminated,omitempty"`
	Turns            []Turn        `json:"turns,omitempty"`
	Winner           string        `json:"winner,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	StartedAt        *time.Time    `json:"started_at,omitempty"`
}

// GameFromModel converts a model.Game
func GameFromModel(g *model.Game) Game {
	players := make([]Participant, 0, len(g.PlayersActive))
	for _, p := range g.Roster() {
		players = append(players, Participant{
			ID:           string(p.ID),
			Name:         p.Name,
			IsHost:       p.IsHost,
			HasPassed:    p.HasPassed,
			IsEliminated: p.IsEliminated,
		})
	}

	var eliminated []string
	for _, id := range g.PlayersOut {
		eliminated = append(eliminated, string(id))
	}

	var turns []Turn
	for _, rec := range g.WordsUsed {
		turns = append(turns, Turn{
			PlayerID:  string(rec.PlayerID),
			Letter:    rec.Letter,
			Word:      rec.Word,
			Direction: string(rec.Direction),
			Timestamp: rec.Timestamp,
		})
	}

	var startedAt *time.Time
	if g.HasStarted {
		t := g.StartedAt
		startedAt = &t
	}

	return Game{
		ID:               string(g.ID),
		Code:             g.JoinCode,
		Phase:            string(g.Phase),
		HostID:           string(g.HostID),
		BaseLetter:       g.BaseLetter,
		Sequence:         g.Sequence,
		CurrentPlayerID:  string(g.CurrentPlayerID),
		LastDirection:    string(g.LastDirection),
		PendingDirection: string(g.PendingDirection),
		Players:          players,
		Eliminated:       eliminated,
		Turns:            turns,
		Winner:           string(g.Winner),
		CreatedAt:        g.CreatedAt,
		StartedAt:        startedAt,
	}
}

// ActionResponse is returned by every game action. Game is nil once the
// action ended the game.
type ActionResponse struct {
	Effects []model.Effect `json:"effects"`
	Game    *Game          `json:"game,omitempty"`
}

// NewActionResponse pairs effects with the game view after the action
func NewActionResponse(effects []model.Effect, g *model.Game) ActionResponse {
	resp := ActionResponse{Effects: effects}
	if resp.Effects == nil {
		resp.Effects = []model.Effect{}
	}
	if g != nil {
		view := GameFromModel(g)
		resp.Game = &view
	}
	return resp
}

// Health is the response of the health endpoint
type Health struct {
	Status           string `json:"status"`
	ActiveGames      int    `json:"active_games"`
	DictionaryLoaded bool   `json:"dictionary_loaded"`
	DictionaryWords  int    `json:"dictionary_words"`
}
