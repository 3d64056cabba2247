// Package validator decides whether a submitted move is legal without
// touching game state.
package validator

import (
	"strings"
	"unicode/utf8"

	"github.com/mcoot/baldagame/internal/model"
	"github.com/mcoot/baldagame/internal/services/dictionary"
)

// MinLosingLength is the shortest sequence that loses when it forms a word
const MinLosingLength = 3

// Lookup is the dictionary capability the validator needs
type Lookup interface {
	Contains(word string) bool
}

// Validate runs the move checks in order and returns the candidate sequence.
// Inputs must already be normalized. A failed check returns a
// *model.RejectionError carrying the reason.
func Validate(g *model.Game, dict Lookup, letter string, dir model.Direction, word string) (string, error) {
	if utf8.RuneCountInString(letter) != 1 || !dictionary.IsLetter([]rune(letter)[0]) {
		return "", model.Rejected(model.RejectInvalidLetter)
	}
	if !dictionary.IsWord(word) {
		return "", model.Rejected(model.RejectInvalidWord)
	}
	if !dict.Contains(word) {
		return "", model.Rejected(model.RejectUnknownWord)
	}
	if g.WordUsed(word) {
		return "", model.Rejected(model.RejectWordUsed)
	}

	candidate := Candidate(g.Sequence, letter, dir)
	if !strings.Contains(word, candidate) {
		return "", model.Rejected(model.RejectSequenceMismatch)
	}
	return candidate, nil
}

// Candidate forms the sequence a move would produce
func Candidate(sequence, letter string, dir model.Direction) string {
	if dir == model.DirectionLeft {
		return letter + sequence
	}
	return sequence + letter
}

// FormsWord reports whether a candidate completes a dictionary word long
// enough to lose the game.
func FormsWord(dict Lookup, candidate string) bool {
	return utf8.RuneCountInString(candidate) >= MinLosingLength && dict.Contains(candidate)
}
