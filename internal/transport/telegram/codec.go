package telegram

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/baldagame/internal/model"
)

// Callback data layout: balda:<action>[:<direction>]:<gameID>
const (
	callbackPrefix = "balda"

	actionDirection = "dir"
	actionPass      = "pass"
	actionStart     = "start"
)

// ErrUnknownCallback is returned for button data this bot did not produce
var ErrUnknownCallback = errors.New("unknown callback data")

// EncodeDirection builds the data of a direction button
func EncodeDirection(gameID model.GameID, dir model.Direction) string {
	return strings.Join([]string{callbackPrefix, actionDirection, string(dir), string(gameID)}, ":")
}

// EncodePass builds the data of a pass button
func EncodePass(gameID model.GameID) string {
	return strings.Join([]string{callbackPrefix, actionPass, string(gameID)}, ":")
}

// EncodeStart builds the data of a start button
func EncodeStart(gameID model.GameID) string {
	return strings.Join([]string{callbackPrefix, actionStart, string(gameID)}, ":")
}

// DecodeCallback turns button data pressed by a player into an event.
// A start button decodes to StartMatch without a letter.
func DecodeCallback(data string, player model.PlayerID) (model.Event, error) {
	parts := strings.Split(data, ":")
	if len(parts) < 3 || parts[0] != callbackPrefix {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
	}

	switch parts[1] {
	case actionDirection:
		if len(parts) != 4 || parts[3] == "" {
			break
		}
		dir, err := model.ParseDirection(parts[2])
		if err != nil {
			return nil, err
		}
		return model.ChooseDirection{GameID: model.GameID(parts[3]), PlayerID: player, Direction: dir}, nil
	case actionPass:
		if len(parts) != 3 || parts[2] == "" {
			break
		}
		return model.Pass{GameID: model.GameID(parts[2]), PlayerID: player}, nil
	case actionStart:
		if len(parts) != 3 || parts[2] == "" {
			break
		}
		return model.StartMatch{GameID: model.GameID(parts[2]), PlayerID: player}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
}

// ParseMove reads "<letter> <word>". The letter is a single character and
// the word follows after whitespace; normalization is left to the engine.
func ParseMove(text string) (letter, word string, ok bool) {
	fields := strings.Fields(text)
	if len(fields) != 2 || utf8.RuneCountInString(fields[0]) != 1 {
		return "", "", false
	}
	return fields[0], fields[1], true
}

// DecodeMove turns a chat message into a move for the game
func DecodeMove(text string, gameID model.GameID, player model.PlayerID) (model.SubmitMove, bool) {
	letter, word, ok := ParseMove(text)
	if !ok {
		return model.SubmitMove{}, false
	}
	return model.SubmitMove{GameID: gameID, PlayerID: player, Letter: letter, Word: word}, true
}
