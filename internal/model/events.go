package model

// EventKind identifies an inbound game event
type EventKind string

const (
	EventStartMatch      EventKind = "start_match"
	EventChooseDirection EventKind = "choose_direction"
	EventSubmitMove      EventKind = "submit_move"
	EventPass            EventKind = "pass"
	EventResign          EventKind = "resign"
)

// Event is an inbound request addressed to one game. Transports decode their
// input into one of the concrete event types below.
type Event interface {
	Kind() EventKind
	Game() GameID
}

// StartMatch starts a lobby with the given base letter
type StartMatch struct {
	GameID     GameID
	PlayerID   PlayerID // Requesting player; empty when the lobby collaborator already checked it
	BaseLetter string
}

// ChooseDirection picks the side for the current turn
type ChooseDirection struct {
	GameID    GameID
	PlayerID  PlayerID
	Direction Direction
}

// SubmitMove proposes a letter and a word containing the new sequence
type SubmitMove struct {
	GameID   GameID
	PlayerID PlayerID
	Letter   string
	Word     string
}

// Pass skips the current turn once per match
type Pass struct {
	GameID   GameID
	PlayerID PlayerID
}

// Resign eliminates the player voluntarily
type Resign struct {
	GameID   GameID
	PlayerID PlayerID
}

func (e StartMatch) Kind() EventKind      { return EventStartMatch }
func (e ChooseDirection) Kind() EventKind { return EventChooseDirection }
func (e SubmitMove) Kind() EventKind      { return EventSubmitMove }
func (e Pass) Kind() EventKind            { return EventPass }
func (e Resign) Kind() EventKind          { return EventResign }

func (e StartMatch) Game() GameID      { return e.GameID }
func (e ChooseDirection) Game() GameID { return e.GameID }
func (e SubmitMove) Game() GameID      { return e.GameID }
func (e Pass) Game() GameID            { return e.GameID }
func (e Resign) Game() GameID          { return e.GameID }
