package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Game:
		o.printGame(v)
	case ActionResult:
		o.printActionResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Participant is a seat in a game
type Participant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	IsHost       bool   `json:"is_host"`
	HasPassed    bool   `json:"has_passed"`
	IsEliminated bool   `json:"is_eliminated"`
}

// Turn is an accepted move
type Turn struct {
	PlayerID  string `json:"player_id"`
	Letter    string `json:"letter"`
	Word      string `json:"word"`
	Direction string `json:"direction"`
}

// Game response type
type Game struct {
	ID               string        `json:"id"`
	Code             string        `json:"code"`
	Phase            string        `json:"phase"`
	HostID           string        `json:"host_id"`
	BaseLetter       string        `json:"base_letter,omitempty"`
	Sequence         string        `json:"sequence,omitempty"`
	CurrentPlayerID  string        `json:"current_player_id,omitempty"`
	PendingDirection string        `json:"pending_direction,omitempty"`
	Players          []Participant `json:"players"`
	Turns            []Turn        `json:"turns,omitempty"`
	Winner           string        `json:"winner,omitempty"`
}

// Effect is one outcome of an action, as published by the server
type Effect struct {
	Type       string          `json:"type"`
	Timestamp  time.Time       `json:"timestamp"`
	PlayerID   string          `json:"player_id,omitempty"`
	PlayerName string          `json:"player_name,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// ActionResult response type. Game is nil once the action ended the game.
type ActionResult struct {
	Effects []Effect `json:"effects"`
	Game    *Game    `json:"game,omitempty"`
}

// HealthResult response type
type HealthResult struct {
	Status           string `json:"status"`
	ActiveGames      int    `json:"active_games"`
	DictionaryLoaded bool   `json:"dictionary_loaded"`
	DictionaryWords  int    `json:"dictionary_words"`
}

func (o *Output) printPlayer(p Player) {
	guestStr := "no"
	if p.IsGuest {
		guestStr = "yes"
	}
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Fprintf(o.w, "Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Fprintf(o.w, "Token: %s\n", a.SessionToken)
}

func (o *Output) printGame(g Game) {
	fmt.Fprintf(o.w, "Lobby: %s\n", g.Code)
	fmt.Fprintf(o.w, "Phase: %s\n", g.Phase)
	if g.Sequence != "" {
		fmt.Fprintf(o.w, "Sequence: %s\n", strings.ToUpper(g.Sequence))
	}
	if g.CurrentPlayerID != "" {
		turn := g.playerName(g.CurrentPlayerID)
		if g.PendingDirection != "" {
			turn += ", adding on the " + g.PendingDirection
		}
		fmt.Fprintf(o.w, "Turn: %s\n", turn)
	}

	fmt.Fprintf(o.w, "Players (%d):\n", len(g.Players))
	for _, p := range g.Players {
		var tags []string
		if p.IsHost {
			tags = append(tags, "host")
		}
		if p.HasPassed {
			tags = append(tags, "passed")
		}
		if p.IsEliminated {
			tags = append(tags, "out")
		}
		suffix := ""
		if len(tags) > 0 {
			suffix = " [" + strings.Join(tags, ", ") + "]"
		}
		fmt.Fprintf(o.w, "  - %s (%s)%s\n", p.Name, p.ID, suffix)
	}

	if len(g.Turns) > 0 {
		fmt.Fprintln(o.w, "Words:")
		for _, t := range g.Turns {
			fmt.Fprintf(o.w, "  - %s: %s %s (%s)\n", g.playerName(t.PlayerID), t.Letter, t.Direction, t.Word)
		}
	}

	if g.Winner != "" {
		fmt.Fprintf(o.w, "Winner: %s\n", g.playerName(g.Winner))
	}
}

func (g Game) playerName(id string) string {
	for _, p := range g.Players {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}

func (o *Output) printActionResult(a ActionResult) {
	for _, e := range a.Effects {
		fmt.Fprintln(o.w, describeEffect(e.Type, e.PlayerName, e.Payload))
	}
	if a.Game != nil {
		fmt.Fprintln(o.w)
		o.printGame(*a.Game)
	} else {
		fmt.Fprintln(o.w, "Game over")
	}
}

// describeEffect renders an effect as one line
func describeEffect(effectType, player string, payload json.RawMessage) string {
	line := effectType
	if player != "" {
		line += " " + player
	}
	if len(payload) > 0 && string(payload) != "null" {
		line += " " + string(payload)
	}
	return line
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Active games: %d\n", h.ActiveGames)
	if h.DictionaryLoaded {
		fmt.Fprintf(o.w, "Dictionary: %d words\n", h.DictionaryWords)
	} else {
		fmt.Fprintln(o.w, "Dictionary: not loaded")
	}
}
