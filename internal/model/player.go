package model

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Name length limits for display names
const (
	MinNameLength = 2
	MaxNameLength = 32
)

// Player is a participant of one game
type Player struct {
	ID           PlayerID `json:"id"`
	Name         string   `json:"name"`
	HasPassed    bool     `json:"has_passed"`
	IsEliminated bool     `json:"is_eliminated"`
	IsHost       bool     `json:"is_host"`
}

// ValidName reports whether a display name fits the length limits
func ValidName(name string) bool {
	n := len([]rune(name))
	return n >= MinNameLength && n <= MaxNameLength
}
