package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidName    = errors.New("display name must be 2 to 32 characters")

	// Lobby errors
	ErrJoinCodeNotFound = errors.New("join code not found")
	ErrAlreadyInGame    = errors.New("player is already in game")
	ErrNotInGame        = errors.New("player is not in game")
	ErrNotHost          = errors.New("player is not the host")
	ErrGameInProgress   = errors.New("game is in progress")

	// Engine errors
	ErrGameNotFound        = errors.New("game not found")
	ErrInvalidTransition   = errors.New("operation not allowed in current state")
	ErrNotYourTurn         = errors.New("not this player's turn")
	ErrValidationRejected  = errors.New("move rejected")
	ErrAlreadyEliminated   = errors.New("player is already eliminated")
	ErrPassUsed            = errors.New("pass already used")
	ErrInvalidDirection    = errors.New("direction must be left or right")
	ErrInvalidLetter       = errors.New("letter must be a single cyrillic letter")
	ErrRosterTooSmall      = fmt.Errorf("%w: not enough players", ErrInvalidTransition)
	ErrRosterFull          = fmt.Errorf("%w: roster is full", ErrInvalidTransition)
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")
)

// RejectReason identifies which move check failed
type RejectReason string

const (
	RejectInvalidLetter    RejectReason = "invalid_letter"
	RejectInvalidWord      RejectReason = "invalid_word"
	RejectUnknownWord      RejectReason = "unknown_word"
	RejectWordUsed         RejectReason = "word_already_used"
	RejectSequenceMismatch RejectReason = "sequence_not_in_word"
)

// RejectionError is returned when a submitted move fails validation
type RejectionError struct {
	Reason RejectReason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("move rejected: %s", e.Reason)
}

func (e *RejectionError) Unwrap() error {
	return ErrValidationRejected
}

// Rejected builds a RejectionError for the given reason
func Rejected(reason RejectReason) error {
	return &RejectionError{Reason: reason}
}
