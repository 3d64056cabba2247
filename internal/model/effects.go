package model

import "time"

// EffectType identifies the type of outbound effect
type EffectType string

const (
	// Lobby effects
	EffectPlayerJoined EffectType = "player_joined"
	EffectPlayerLeft   EffectType = "player_left"

	// Turn effects
	EffectMatchStarted          EffectType = "match_started"
	EffectPromptDirectionChoice EffectType = "prompt_direction_choice"
	EffectPromptMoveEntry       EffectType = "prompt_move_entry"
	EffectAnnounceTurn          EffectType = "announce_turn"
	EffectAnnouncePass          EffectType = "announce_pass"
	EffectAnnounceRejection     EffectType = "announce_rejection"
	EffectAnnounceReminder      EffectType = "announce_reminder"
	EffectAnnounceElimination   EffectType = "announce_elimination"
	EffectAnnounceWinner        EffectType = "announce_winner"
	EffectAnnounceAbandoned     EffectType = "announce_abandoned"
)

// EliminationReason explains why a player left the match
type EliminationReason string

const (
	ReasonTimedOut   EliminationReason = "timed_out"
	ReasonFormedWord EliminationReason = "formed_word"
	ReasonResigned   EliminationReason = "resigned"
)

// Effect is something the engine wants a transport to deliver
type Effect struct {
	Type       EffectType `json:"type"`
	Timestamp  time.Time  `json:"timestamp"`
	GameID     GameID     `json:"game_id"`
	Chat       ChatKey    `json:"chat"`
	PlayerID   PlayerID   `json:"player_id,omitempty"` // The player addressed or affected
	PlayerName string     `json:"player_name,omitempty"`
	Payload    any        `json:"payload,omitempty"` // Type-specific data
}

// PlayerJoinedPayload contains data for player joined effects
type PlayerJoinedPayload struct {
	PlayerCount int `json:"player_count"`
}

// PlayerLeftPayload contains data for player left effects
type PlayerLeftPayload struct {
	NewHostID PlayerID `json:"new_host_id,omitempty"`
}

// MatchStartedPayload contains data for match started effects
type MatchStartedPayload struct {
	BaseLetter string     `json:"base_letter"`
	Order      []PlayerID `json:"order"`
}

// PromptDirectionPayload asks the current player for a side
type PromptDirectionPayload struct {
	Sequence      string    `json:"sequence"`
	PassAvailable bool      `json:"pass_available"`
	Deadline      time.Time `json:"deadline"`
}

// PromptMovePayload asks the current player for a letter and word
type PromptMovePayload struct {
	Sequence  string    `json:"sequence"`
	Direction Direction `json:"direction"`
	Deadline  time.Time `json:"deadline"`
}

// TurnPayload announces an accepted move
type TurnPayload struct {
	Record   TurnRecord `json:"record"`
	Sequence string     `json:"sequence"`
}

// PassPayload announces a used pass
type PassPayload struct {
	Sequence string `json:"sequence"`
}

// RejectionPayload explains a refused move
type RejectionPayload struct {
	Reason RejectReason `json:"reason"`
}

// ReminderPayload warns that the turn is about to expire
type ReminderPayload struct {
	Remaining time.Duration `json:"remaining"`
}

// EliminationPayload announces an eliminated player
type EliminationPayload struct {
	Reason    EliminationReason `json:"reason"`
	Candidate string            `json:"candidate,omitempty"` // Set when the player formed a word
}

// WinnerPayload announces the winner with match statistics
type WinnerPayload struct {
	Stats GameStats `json:"stats"`
}

// AbandonedPayload announces a game nobody can finish
type AbandonedPayload struct {
	Reason string `json:"reason"`
}

// GameStats summarizes a finished match
type GameStats struct {
	TotalTurns    int           `json:"total_turns"`
	UniqueWords   int           `json:"unique_words"`
	Duration      time.Duration `json:"duration"`
	FinalSequence string        `json:"final_sequence"`
	Eliminated    []string      `json:"eliminated"` // Names in elimination order
	WinnerName    string        `json:"winner_name"`
}
