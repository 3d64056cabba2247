package model

import "time"

// Profile is a player identity known to the HTTP surface
type Profile struct {
	ID          PlayerID
	DisplayName string
	IsGuest     bool // true for unregistered players
	CreatedAt   time.Time
}

// Credentials holds login data for a registered profile
// Stored separately for security (password never in memory with session)
type Credentials struct {
	PlayerID     PlayerID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
