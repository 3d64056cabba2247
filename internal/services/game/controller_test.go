package game

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/baldagame/internal/dependencies/mocks"
	"github.com/mcoot/baldagame/internal/model"
	"github.com/mcoot/baldagame/internal/services/dictionary"
	"github.com/mcoot/baldagame/internal/services/turntimer"
	"github.com/mcoot/baldagame/internal/storage/memory"
	"github.com/mcoot/baldagame/internal/testutil"
)

// hookStorage runs a callback before a game is deleted
type hookStorage struct {
	*memory.Storage
	beforeDelete func(id model.GameID)
}

func (h *hookStorage) DeleteGame(ctx context.Context, id model.GameID) error {
	if h.beforeDelete != nil {
		h.beforeDelete(id)
	}
	return h.Storage.DeleteGame(ctx, id)
}

// gate holds the first reminder batch until release is closed
type gate struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gate) Notify(ctx context.Context, gameID model.GameID, effects []model.Effect) {
	for _, e := range effects {
		if e.Type == model.EffectAnnounceReminder {
			g.once.Do(func() {
				close(g.entered)
				<-g.release
			})
		}
	}
}

// recorder is a Notifier that keeps every published effect
type recorder struct {
	mu      sync.Mutex
	effects []model.Effect
}

func (r *recorder) Notify(ctx context.Context, gameID model.GameID, effects []model.Effect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects = append(r.effects, effects...)
}

func (r *recorder) types() []model.EffectType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]model.EffectType, len(r.effects))
	for i, e := range r.effects {
		types[i] = e.Type
	}
	return types
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.effects = nil
	r.mu.Unlock()
}

var testChat = model.ChatKey{ChatID: -100500, ThreadID: 9}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	dict       *dictionary.Service
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	sched      *mocks.MockScheduler
	notified   *recorder
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.dict = dictionary.New(s.storage, testutil.NopLogger())
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.sched = mocks.NewMockScheduler()
	s.notified = &recorder{}
	s.controller = s.newController()
	s.ctx = context.Background()

	_ = s.dict.LoadWords([]string{
		"кот", "кран", "урок", "икра", "краб", "кра", "рак", "сок", "кит", "ком", "око", "кость",
	})
}

func (s *ControllerSuite) newController() *Controller {
	c := NewController(s.storage, s.dict, s.sched, turntimer.DefaultConfig(), s.clock, s.random, testutil.NopLogger())
	c.AddNotifier(s.notified)
	return c
}

// tick moves both the clock and the scheduler forward
func (s *ControllerSuite) tick(d time.Duration) {
	s.clock.Advance(d)
	s.sched.Advance(d)
}

// openLobby creates a lobby hosted by "a" and adds the other players in order
func (s *ControllerSuite) openLobby(players ...model.PlayerID) model.GameID {
	s.random.QueueID("game-1")
	g, err := s.controller.Open(s.ctx, players[0], "Player "+string(players[0]), testChat, "JOIN1")
	s.Require().NoError(err)
	for _, id := range players[1:] {
		_, err := s.controller.AddPlayer(s.ctx, g.ID, id, "Player "+string(id))
		s.Require().NoError(err)
	}
	return g.ID
}

// startMatch opens a lobby and starts it with the given base letter
func (s *ControllerSuite) startMatch(letter string, players ...model.PlayerID) model.GameID {
	id := s.openLobby(players...)
	_, err := s.controller.StartMatch(s.ctx, id, players[0], letter)
	s.Require().NoError(err)
	s.notified.reset()
	return id
}

// play chooses a direction and submits a move that must be accepted
func (s *ControllerSuite) play(id model.GameID, player model.PlayerID, dir model.Direction, letter, word string) []model.Effect {
	_, err := s.controller.ChooseDirection(s.ctx, id, player, dir)
	s.Require().NoError(err)
	effects, err := s.controller.SubmitMove(s.ctx, id, player, letter, word)
	s.Require().NoError(err)
	return effects
}

func (s *ControllerSuite) game(id model.GameID) *model.Game {
	g, err := s.controller.Get(s.ctx, id)
	s.Require().NoError(err)
	return g
}

func effectTypes(effects []model.Effect) []model.EffectType {
	types := make([]model.EffectType, len(effects))
	for i, e := range effects {
		types[i] = e.Type
	}
	return types
}

// Lobby roster tests

func (s *ControllerSuite) TestOpenCreatesLobby() {
	s.random.QueueID("game-1")

	g, err := s.controller.Open(s.ctx, "a", "  Alice ", testChat, "JOIN1")
	s.Require().NoError(err)

	s.Equal(model.GameID("game-1"), g.ID)
	s.Equal(model.PhaseLobby, g.Phase)
	s.Equal(model.PlayerID("a"), g.HostID)
	s.Equal("Alice", g.Players["a"].Name)
	s.True(g.Players["a"].IsHost)
	s.Equal(1, s.controller.ActiveGames())

	stored, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.False(stored.HasStarted)
}

func (s *ControllerSuite) TestOpenRejectsInvalidName() {
	_, err := s.controller.Open(s.ctx, "a", "A", testChat, "JOIN1")
	s.ErrorIs(err, model.ErrInvalidName)
}

func (s *ControllerSuite) TestAddPlayer() {
	id := s.openLobby("a")

	effects, err := s.controller.AddPlayer(s.ctx, id, "b", "Bob")
	s.Require().NoError(err)
	s.Require().Len(effects, 1)
	s.Equal(model.EffectPlayerJoined, effects[0].Type)
	s.Equal(model.PlayerJoinedPayload{PlayerCount: 2}, effects[0].Payload)
	s.Equal(testChat, effects[0].Chat)

	_, err = s.controller.AddPlayer(s.ctx, id, "b", "Bob")
	s.ErrorIs(err, model.ErrAlreadyInGame)

	_, err = s.controller.AddPlayer(s.ctx, id, "c", "C")
	s.ErrorIs(err, model.ErrInvalidName)
}

func (s *ControllerSuite) TestAddPlayerRosterFull() {
	id := s.openLobby("a", "b", "c", "d", "e")

	_, err := s.controller.AddPlayer(s.ctx, id, "f", "Frank")
	s.ErrorIs(err, model.ErrRosterFull)
}

func (s *ControllerSuite) TestAddPlayerAfterStart() {
	id := s.startMatch("к", "a", "b")

	_, err := s.controller.AddPlayer(s.ctx, id, "c", "Carol")
	s.ErrorIs(err, model.ErrGameInProgress)
}

func (s *ControllerSuite) TestRemovePlayerReassignsHost() {
	id := s.openLobby("a", "b", "c")

	effects, err := s.controller.RemovePlayer(s.ctx, id, "a")
	s.Require().NoError(err)
	s.Require().Len(effects, 1)
	s.Equal(model.PlayerLeftPayload{NewHostID: "b"}, effects[0].Payload)

	g := s.game(id)
	s.Equal(model.PlayerID("b"), g.HostID)
	s.True(g.Players["b"].IsHost)
	s.Equal([]model.PlayerID{"b", "c"}, g.PlayersActive)

	_, err = s.controller.RemovePlayer(s.ctx, id, "a")
	s.ErrorIs(err, model.ErrNotInGame)
}

func (s *ControllerSuite) TestRemoveLastPlayerDropsLobby() {
	id := s.openLobby("a")
	_ = s.storage.BindJoinCode(s.ctx, "JOIN1", id)
	_ = s.storage.BindChat(s.ctx, testChat, id)

	effects, err := s.controller.RemovePlayer(s.ctx, id, "a")
	s.Require().NoError(err)
	s.Equal([]model.EffectType{model.EffectPlayerLeft, model.EffectAnnounceAbandoned}, effectTypes(effects))

	_, err = s.controller.Get(s.ctx, id)
	s.ErrorIs(err, model.ErrGameNotFound)
	_, err = s.storage.GameForJoinCode(s.ctx, "JOIN1")
	s.ErrorIs(err, model.ErrJoinCodeNotFound)
	_, err = s.storage.GameForChat(s.ctx, testChat)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestRemovePlayerAfterStart() {
	id := s.startMatch("к", "a", "b")

	_, err := s.controller.RemovePlayer(s.ctx, id, "b")
	s.ErrorIs(err, model.ErrGameInProgress)
}

func (s *ControllerSuite) TestAbandonStartedGame() {
	id := s.startMatch("к", "a", "b")

	effects, err := s.controller.Abandon(s.ctx, id, "replaced")
	s.Require().NoError(err)
	s.Require().Len(effects, 1)
	s.Equal(model.AbandonedPayload{Reason: "replaced"}, effects[0].Payload)
	s.Equal(0, s.sched.Pending())

	_, err = s.controller.Get(s.ctx, id)
	s.ErrorIs(err, model.ErrGameNotFound)
}

// StartMatch tests

func (s *ControllerSuite) TestStartMatch() {
	id := s.openLobby("a", "b", "c")
	s.notified.reset()

	effects, err := s.controller.StartMatch(s.ctx, id, "a", "К")
	s.Require().NoError(err)

	s.Equal([]model.EffectType{model.EffectMatchStarted, model.EffectPromptDirectionChoice}, effectTypes(effects))
	s.Equal(model.MatchStartedPayload{BaseLetter: "к", Order: []model.PlayerID{"a", "b", "c"}}, effects[0].Payload)
	s.Equal(model.PlayerID("a"), effects[1].PlayerID)
	s.Equal(model.PromptDirectionPayload{
		Sequence:      "к",
		PassAvailable: true,
		Deadline:      s.clock.Now().Add(time.Minute),
	}, effects[1].Payload)

	g := s.game(id)
	s.Equal(model.PhaseAwaitingDirection, g.Phase)
	s.Equal("к", g.Sequence)
	s.Equal(model.PlayerID("a"), g.CurrentPlayerID)
	s.True(g.HasStarted)
	s.Equal(2, s.sched.Pending())
	s.Equal(effectTypes(effects), s.notified.types())
}

func (s *ControllerSuite) TestStartMatchTwiceIsInvalid() {
	id := s.startMatch("к", "a", "b")

	_, err := s.controller.StartMatch(s.ctx, id, "a", "к")
	s.ErrorIs(err, model.ErrInvalidTransition)
}

func (s *ControllerSuite) TestStartMatchRosterTooSmall() {
	id := s.openLobby("a")

	_, err := s.controller.StartMatch(s.ctx, id, "a", "к")
	s.ErrorIs(err, model.ErrRosterTooSmall)
	s.ErrorIs(err, model.ErrInvalidTransition)
	s.Equal(model.PhaseLobby, s.game(id).Phase)
}

func (s *ControllerSuite) TestStartMatchRequiresHost() {
	id := s.openLobby("a", "b")

	_, err := s.controller.StartMatch(s.ctx, id, "b", "к")
	s.ErrorIs(err, model.ErrNotHost)

	_, err = s.controller.StartMatch(s.ctx, id, "", "к")
	s.NoError(err, "an empty requester skips the host check")
}

func (s *ControllerSuite) TestStartMatchInvalidLetter() {
	id := s.openLobby("a", "b")

	for _, letter := range []string{"", "ab", "k", "кк", "1"} {
		_, err := s.controller.StartMatch(s.ctx, id, "a", letter)
		s.ErrorIs(err, model.ErrInvalidLetter, letter)
	}
}

// Direction and move tests

func (s *ControllerSuite) TestChooseDirection() {
	id := s.startMatch("к", "a", "b")
	s.tick(30 * time.Second)

	effects, err := s.controller.ChooseDirection(s.ctx, id, "a", model.DirectionRight)
	s.Require().NoError(err)
	s.Require().Len(effects, 1)
	s.Equal(model.EffectPromptMoveEntry, effects[0].Type)
	s.Equal(model.PromptMovePayload{
		Sequence:  "к",
		Direction: model.DirectionRight,
		Deadline:  s.clock.Now().Add(time.Minute),
	}, effects[0].Payload)

	g := s.game(id)
	s.Equal(model.PhaseAwaitingMove, g.Phase)
	s.Equal(model.DirectionRight, g.PendingDirection)

	// The budget restarted, so the old deadline passes without a timeout
	s.tick(40 * time.Second)
	s.False(s.game(id).Players["a"].IsEliminated)
}

func (s *ControllerSuite) TestChooseDirectionNotYourTurn() {
	id := s.startMatch("к", "a", "b")

	_, err := s.controller.ChooseDirection(s.ctx, id, "b", model.DirectionLeft)
	s.ErrorIs(err, model.ErrNotYourTurn)
	s.Equal(model.PhaseAwaitingDirection, s.game(id).Phase)
}

func (s *ControllerSuite) TestChooseDirectionInvalid() {
	id := s.startMatch("к", "a", "b")

	_, err := s.controller.ChooseDirection(s.ctx, id, "a", model.Direction("up"))
	s.ErrorIs(err, model.ErrInvalidDirection)
}

func (s *ControllerSuite) TestSubmitMoveBeforeDirection() {
	id := s.startMatch("к", "a", "b")

	_, err := s.controller.SubmitMove(s.ctx, id, "a", "о", "кот")
	s.ErrorIs(err, model.ErrInvalidTransition)
}

// Scenario: right + "о" with "кот" extends "к" to "ко"
func (s *ControllerSuite) TestAcceptedMoveExtendsSequence() {
	id := s.startMatch("к", "a", "b")

	effects := s.play(id, "a", model.DirectionRight, "О", " Кот ")

	s.Equal([]model.EffectType{model.EffectAnnounceTurn, model.EffectPromptDirectionChoice}, effectTypes(effects))
	turn := effects[0].Payload.(model.TurnPayload)
	s.Equal("ко", turn.Sequence)
	s.Equal("кот", turn.Record.Word)
	s.Equal(model.PlayerID("b"), effects[1].PlayerID)

	g := s.game(id)
	s.Equal("ко", g.Sequence)
	s.Require().Len(g.WordsUsed, 1)
	s.Equal(model.TurnRecord{
		PlayerID:  "a",
		Letter:    "о",
		Word:      "кот",
		Direction: model.DirectionRight,
		Timestamp: s.clock.Now(),
	}, g.WordsUsed[0])
	s.Equal(model.DirectionRight, g.LastDirection)
	s.Empty(g.PendingDirection)
	s.Equal(model.PlayerID("b"), g.CurrentPlayerID)
	s.Equal(model.PhaseAwaitingDirection, g.Phase)

	stored, err := s.storage.GetGame(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("ко", stored.Sequence)
}

// Scenario: left + "у" on "ко" gives "уко", which "урок" does not contain
func (s *ControllerSuite) TestRejectedMoveLeavesStateAndTimers() {
	id := s.startMatch("к", "a", "b")
	s.play(id, "a", model.DirectionRight, "о", "кот")
	_, err := s.controller.ChooseDirection(s.ctx, id, "b", model.DirectionLeft)
	s.Require().NoError(err)
	s.notified.reset()
	s.tick(20 * time.Second)

	effects, err := s.controller.SubmitMove(s.ctx, id, "b", "у", "урок")
	s.ErrorIs(err, model.ErrValidationRejected)
	var rejection *model.RejectionError
	s.Require().ErrorAs(err, &rejection)
	s.Equal(model.RejectSequenceMismatch, rejection.Reason)

	s.Require().Len(effects, 1)
	s.Equal(model.EffectAnnounceRejection, effects[0].Type)
	s.Equal([]model.EffectType{model.EffectAnnounceRejection}, s.notified.types())

	g := s.game(id)
	s.Equal("ко", g.Sequence)
	s.Len(g.WordsUsed, 1)
	s.Equal(model.PhaseAwaitingMove, g.Phase)
	s.Equal(2, s.sched.Pending())

	// The player keeps only the remaining time
	s.tick(39 * time.Second)
	s.False(s.game(id).Players["b"].IsEliminated)
	s.tick(time.Second)
	_, err = s.controller.Get(s.ctx, id)
	s.ErrorIs(err, model.ErrGameNotFound, "two player game ends when b times out")
}

func (s *ControllerSuite) TestRejectionReasons() {
	id := s.startMatch("к", "a", "b")
	s.play(id, "a", model.DirectionRight, "о", "кот")
	_, err := s.controller.ChooseDirection(s.ctx, id, "b", model.DirectionRight)
	s.Require().NoError(err)

	tests := []struct {
		letter string
		word   string
		reason model.RejectReason
	}{
		{"", "кость", model.RejectInvalidLetter},
		{"s", "кость", model.RejectInvalidLetter},
		{"с", "ко сть", model.RejectInvalidWord},
		{"с", "костъх", model.RejectUnknownWord},
		{"т", "кот", model.RejectWordUsed},
		{"м", "кость", model.RejectSequenceMismatch},
	}
	for _, tt := range tests {
		_, err := s.controller.SubmitMove(s.ctx, id, "b", tt.letter, tt.word)
		var rejection *model.RejectionError
		s.Require().ErrorAs(err, &rejection, tt.word)
		s.Equal(tt.reason, rejection.Reason, tt.word)
	}
	s.Equal("ко", s.game(id).Sequence)
}

func (s *ControllerSuite) TestPlayerCannotReuseOwnWord() {
	id := s.startMatch("к", "a", "b")
	s.play(id, "a", model.DirectionRight, "о", "кот")
	s.play(id, "b", model.DirectionRight, "с", "кость")
	_, err := s.controller.ChooseDirection(s.ctx, id, "a", model.DirectionRight)
	s.Require().NoError(err)

	_, err = s.controller.SubmitMove(s.ctx, id, "a", "т", "кот")
	var rejection *model.RejectionError
	s.Require().ErrorAs(err, &rejection)
	s.Equal(model.RejectWordUsed, rejection.Reason)

	g := s.game(id)
	s.Equal("кос", g.Sequence)
	s.Len(g.WordsUsed, 2)
	s.Equal(model.PlayerID("a"), g.CurrentPlayerID)
}

// Scenario: "ра" extended left with "к" forms the word "кра"
func (s *ControllerSuite) TestFormingWordEliminates() {
	id := s.startMatch("р", "a", "b", "c")
	s.play(id, "a", model.DirectionRight, "а", "рак")

	effects := s.play(id, "b", model.DirectionLeft, "к", "краб")

	s.Equal([]model.EffectType{model.EffectAnnounceElimination, model.EffectPromptDirectionChoice}, effectTypes(effects))
	s.Equal(model.EliminationPayload{Reason: model.ReasonFormedWord, Candidate: "кра"}, effects[0].Payload)

	g := s.game(id)
	s.Equal("ра", g.Sequence)
	s.Len(g.WordsUsed, 1)
	s.False(g.WordUsed("краб"))
	s.True(g.Players["b"].IsEliminated)
	s.Equal([]model.PlayerID{"b"}, g.PlayersOut)
	s.Equal(model.PlayerID("c"), g.CurrentPlayerID)
}

func (s *ControllerSuite) TestTwoLetterWordIsAccepted() {
	_ = s.dict.LoadWords([]string{"ок", "око", "кот"})
	id := s.startMatch("о", "a", "b")

	effects := s.play(id, "a", model.DirectionRight, "к", "ок")

	s.Equal(model.EffectAnnounceTurn, effects[0].Type)
	s.Equal("ок", s.game(id).Sequence)
}

// Scenario: b times out in a three player game and is skipped from then on
func (s *ControllerSuite) TestTimeoutEliminatesAndSkips() {
	id := s.startMatch("к", "a", "b", "c")
	s.play(id, "a", model.DirectionRight, "о", "кот")
	s.notified.reset()

	s.tick(45 * time.Second)
	s.Equal([]model.EffectType{model.EffectAnnounceReminder}, s.notified.types())

	s.tick(15 * time.Second)
	s.Equal([]model.EffectType{
		model.EffectAnnounceReminder,
		model.EffectAnnounceElimination,
		model.EffectPromptDirectionChoice,
	}, s.notified.types())

	g := s.game(id)
	s.True(g.Players["b"].IsEliminated)
	s.Equal(model.PlayerID("c"), g.CurrentPlayerID)

	s.play(id, "c", model.DirectionRight, "с", "кость")
	s.Equal(model.PlayerID("a"), s.game(id).CurrentPlayerID)
}

func (s *ControllerSuite) TestReminderCarriesRemainingTime() {
	id := s.startMatch("к", "a", "b")

	s.tick(45 * time.Second)

	s.Require().Len(s.notified.effects, 1)
	e := s.notified.effects[0]
	s.Equal(model.EffectAnnounceReminder, e.Type)
	s.Equal(model.PlayerID("a"), e.PlayerID)
	s.Equal(model.ReminderPayload{Remaining: 15 * time.Second}, e.Payload)
	s.Equal(model.PhaseAwaitingDirection, s.game(id).Phase)
}

func (s *ControllerSuite) TestStaleTimersAreInert() {
	id := s.startMatch("к", "a", "b", "c")
	_, err := s.controller.ChooseDirection(s.ctx, id, "a", model.DirectionRight)
	s.Require().NoError(err)
	_, err = s.controller.SubmitMove(s.ctx, id, "a", "о", "кот")
	s.Require().NoError(err)
	s.notified.reset()

	// Fires a's superseded pairs as well as b's live pair
	s.sched.FireAll()

	g := s.game(id)
	s.False(g.Players["a"].IsEliminated)
	s.Equal([]model.PlayerID{"b"}, g.PlayersOut)
	s.Equal(model.PlayerID("c"), g.CurrentPlayerID)
	s.Equal("ко", g.Sequence)
}

// Scenario: in a two player game one elimination finishes the match
func (s *ControllerSuite) TestResignFinishesTwoPlayerGame() {
	id := s.startMatch("к", "a", "b")
	_ = s.storage.BindJoinCode(s.ctx, "JOIN1", id)
	s.play(id, "a", model.DirectionRight, "о", "кот")
	s.clock.Advance(time.Minute)

	effects, err := s.controller.Resign(s.ctx, id, "b")
	s.Require().NoError(err)

	s.Equal([]model.EffectType{model.EffectAnnounceElimination, model.EffectAnnounceWinner}, effectTypes(effects))
	winner := effects[1]
	s.Equal(model.PlayerID("a"), winner.PlayerID)
	stats := winner.Payload.(model.WinnerPayload).Stats
	s.Equal(1, stats.TotalTurns)
	s.Equal("КО", stats.FinalSequence)
	s.Equal([]string{"Player b"}, stats.Eliminated)
	s.Equal("Player a", stats.WinnerName)
	s.Equal(time.Minute, stats.Duration)

	_, err = s.controller.Get(s.ctx, id)
	s.ErrorIs(err, model.ErrGameNotFound)
	_, err = s.storage.GetGame(s.ctx, id)
	s.ErrorIs(err, model.ErrGameNotFound)
	_, err = s.storage.GameForJoinCode(s.ctx, "JOIN1")
	s.ErrorIs(err, model.ErrJoinCodeNotFound)
	s.Equal(0, s.sched.Pending())
	s.Equal(0, s.controller.ActiveGames())
}

func (s *ControllerSuite) TestResignOfWaitingPlayerKeepsTurn() {
	id := s.startMatch("к", "a", "b", "c")
	s.tick(10 * time.Second)

	effects, err := s.controller.Resign(s.ctx, id, "c")
	s.Require().NoError(err)
	s.Equal([]model.EffectType{model.EffectAnnounceElimination}, effectTypes(effects))

	g := s.game(id)
	s.Equal(model.PlayerID("a"), g.CurrentPlayerID)
	s.Equal(2, s.sched.Pending())

	s.play(id, "a", model.DirectionRight, "о", "кот")
	s.Equal(model.PlayerID("b"), s.game(id).CurrentPlayerID)
	s.play(id, "b", model.DirectionRight, "с", "кость")
	s.Equal(model.PlayerID("a"), s.game(id).CurrentPlayerID)
}

func (s *ControllerSuite) TestEliminationIsIdempotent() {
	id := s.startMatch("к", "a", "b", "c")

	_, err := s.controller.EliminatePlayer(s.ctx, id, "b", model.ReasonTimedOut)
	s.Require().NoError(err)
	before := s.game(id)

	effects, err := s.controller.EliminatePlayer(s.ctx, id, "b", model.ReasonTimedOut)
	s.Require().NoError(err)
	s.Empty(effects)
	s.Equal(before, s.game(id))

	_, err = s.controller.Resign(s.ctx, id, "b")
	s.ErrorIs(err, model.ErrAlreadyEliminated)
	s.Equal([]model.PlayerID{"b"}, s.game(id).PlayersOut)
}

func (s *ControllerSuite) TestEliminateUnknownPlayer() {
	id := s.startMatch("к", "a", "b")

	_, err := s.controller.EliminatePlayer(s.ctx, id, "zz", model.ReasonResigned)
	s.ErrorIs(err, model.ErrNotInGame)
}

func (s *ControllerSuite) TestResignInLobby() {
	id := s.openLobby("a", "b")

	_, err := s.controller.Resign(s.ctx, id, "b")
	s.ErrorIs(err, model.ErrInvalidTransition)
}

// Pass tests

func (s *ControllerSuite) TestPass() {
	id := s.startMatch("к", "a", "b")

	effects, err := s.controller.Pass(s.ctx, id, "a")
	s.Require().NoError(err)
	s.Equal([]model.EffectType{model.EffectAnnouncePass, model.EffectPromptDirectionChoice}, effectTypes(effects))

	g := s.game(id)
	s.True(g.Players["a"].HasPassed)
	s.Equal("к", g.Sequence)
	s.Equal(model.PlayerID("b"), g.CurrentPlayerID)

	s.play(id, "b", model.DirectionRight, "о", "кот")
	prompt := s.notified.effects[len(s.notified.effects)-1]
	s.Equal(model.PlayerID("a"), prompt.PlayerID)
	s.False(prompt.Payload.(model.PromptDirectionPayload).PassAvailable)

	_, err = s.controller.Pass(s.ctx, id, "a")
	s.ErrorIs(err, model.ErrPassUsed)
}

func (s *ControllerSuite) TestPassAfterChoosingDirection() {
	id := s.startMatch("к", "a", "b")
	_, err := s.controller.ChooseDirection(s.ctx, id, "a", model.DirectionLeft)
	s.Require().NoError(err)

	_, err = s.controller.Pass(s.ctx, id, "a")
	s.Require().NoError(err)

	g := s.game(id)
	s.Empty(g.PendingDirection)
	s.Equal(model.PhaseAwaitingDirection, g.Phase)
}

func (s *ControllerSuite) TestPassNotYourTurn() {
	id := s.startMatch("к", "a", "b")

	_, err := s.controller.Pass(s.ctx, id, "b")
	s.ErrorIs(err, model.ErrNotYourTurn)
}

// Event dispatch tests

func (s *ControllerSuite) TestHandleDispatchesEvents() {
	id := s.openLobby("a", "b")

	_, err := s.controller.Handle(s.ctx, model.StartMatch{GameID: id, PlayerID: "a", BaseLetter: "к"})
	s.Require().NoError(err)
	_, err = s.controller.Handle(s.ctx, model.ChooseDirection{GameID: id, PlayerID: "a", Direction: model.DirectionRight})
	s.Require().NoError(err)
	_, err = s.controller.Handle(s.ctx, model.SubmitMove{GameID: id, PlayerID: "a", Letter: "о", Word: "кот"})
	s.Require().NoError(err)
	_, err = s.controller.Handle(s.ctx, model.Pass{GameID: id, PlayerID: "b"})
	s.Require().NoError(err)

	effects, err := s.controller.Handle(s.ctx, model.Resign{GameID: id, PlayerID: "a"})
	s.Require().NoError(err)
	s.Equal(model.EffectAnnounceWinner, effects[len(effects)-1].Type)
}

func (s *ControllerSuite) TestHandleUnknownGame() {
	_, err := s.controller.Handle(s.ctx, model.Pass{GameID: "missing", PlayerID: "a"})
	s.ErrorIs(err, model.ErrGameNotFound)
}

// Persistence tests

func (s *ControllerSuite) TestRestoreResumesTimers() {
	id := s.startMatch("к", "a", "b", "c")
	s.play(id, "a", model.DirectionRight, "о", "кот")
	_, err := s.controller.ChooseDirection(s.ctx, id, "b", model.DirectionRight)
	s.Require().NoError(err)
	s.controller.Close()
	s.Equal(0, s.sched.Pending())

	restarted := s.newController()
	s.controller = restarted
	n, err := restarted.Restore(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Equal(2, s.sched.Pending())

	g := s.game(id)
	s.Equal(model.PhaseAwaitingMove, g.Phase)
	s.Equal(model.DirectionRight, g.PendingDirection)
	s.True(g.WordUsed("кот"))

	_, err = restarted.SubmitMove(s.ctx, id, "b", "с", "кость")
	s.Require().NoError(err)
	s.Equal("кос", s.game(id).Sequence)
}

func (s *ControllerSuite) TestRestoreSkipsInvalidSnapshots() {
	_ = s.storage.SaveGame(s.ctx, &model.Snapshot{GameID: "broken"})

	n, err := s.controller.Restore(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, n)
}

func (s *ControllerSuite) TestGetLoadsFromStorage() {
	id := s.startMatch("к", "a", "b")
	s.controller.Close()

	other := s.newController()
	g, err := other.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("a"), g.CurrentPlayerID)
	s.Equal(2, s.sched.Pending())
}

func (s *ControllerSuite) TestGetReturnsCopy() {
	id := s.startMatch("к", "a", "b")

	g := s.game(id)
	g.Sequence = "мутация"
	g.Players["a"].IsEliminated = true

	fresh := s.game(id)
	s.Equal("к", fresh.Sequence)
	s.False(fresh.Players["a"].IsEliminated)
}

// Concurrency tests

func (s *ControllerSuite) TestGamesProceedIndependently() {
	const games = 8
	ids := make([]model.GameID, games)
	for i := range ids {
		s.random.QueueID(fmt.Sprintf("game-%d", i))
		g, err := s.controller.Open(s.ctx, "a", "Alice", model.ChatKey{ChatID: int64(i + 1)}, fmt.Sprintf("CODE%d", i))
		s.Require().NoError(err)
		_, err = s.controller.AddPlayer(s.ctx, g.ID, "b", "Bob")
		s.Require().NoError(err)
		_, err = s.controller.StartMatch(s.ctx, g.ID, "a", "к")
		s.Require().NoError(err)
		ids[i] = g.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id model.GameID) {
			defer wg.Done()
			_, _ = s.controller.ChooseDirection(s.ctx, id, "a", model.DirectionRight)
			_, _ = s.controller.SubmitMove(s.ctx, id, "a", "о", "кот")
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		g := s.game(id)
		s.Equal("ко", g.Sequence)
		s.Equal(model.PlayerID("b"), g.CurrentPlayerID)
	}
}

func (s *ControllerSuite) TestConcurrentSubmissionsOnOneGame() {
	id := s.startMatch("к", "a", "b")
	_, err := s.controller.ChooseDirection(s.ctx, id, "a", model.DirectionRight)
	s.Require().NoError(err)

	var wg sync.WaitGroup
	results := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.controller.SubmitMove(s.ctx, id, "a", "о", "кот")
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range results {
		if err == nil {
			accepted++
		}
	}
	s.Equal(1, accepted, "exactly one submission wins the turn")
	s.Len(s.game(id).WordsUsed, 1)
}

func (s *ControllerSuite) TestFinishedGameIsNotReloadedDuringTeardown() {
	store := &hookStorage{Storage: s.storage}
	c := NewController(store, s.dict, s.sched, turntimer.DefaultConfig(), s.clock, s.random, testutil.NopLogger())
	s.controller = c
	id := s.startMatch("к", "a", "b")

	var getErr, moveErr error
	store.beforeDelete = func(gameID model.GameID) {
		_, getErr = c.Get(s.ctx, gameID)
		_, moveErr = c.ChooseDirection(s.ctx, gameID, "b", model.DirectionRight)
	}

	effects, err := c.Resign(s.ctx, id, "a")
	s.Require().NoError(err)
	s.Equal(model.EffectAnnounceWinner, effects[len(effects)-1].Type)

	s.ErrorIs(getErr, model.ErrGameNotFound)
	s.ErrorIs(moveErr, model.ErrGameNotFound)
	s.Equal(0, c.ActiveGames())
	s.Equal(0, s.sched.Pending())

	s.tick(2 * time.Minute)
	_, err = c.Get(s.ctx, id)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestStaleSnapshotOfEndedGameIsRefused() {
	id := s.startMatch("к", "a", "b")
	stale, err := s.storage.GetGame(s.ctx, id)
	s.Require().NoError(err)

	_, err = s.controller.Resign(s.ctx, id, "a")
	s.Require().NoError(err)

	// A failed delete leaves the last snapshot behind
	s.Require().NoError(s.storage.SaveGame(s.ctx, stale))

	_, err = s.controller.Get(s.ctx, id)
	s.ErrorIs(err, model.ErrGameNotFound)
	s.Equal(0, s.controller.ActiveGames())
	s.Equal(0, s.sched.Pending())
}

func (s *ControllerSuite) TestEffectsArePublishedInCommitOrder() {
	g := &gate{entered: make(chan struct{}), release: make(chan struct{})}
	c := NewController(s.storage, s.dict, s.sched, turntimer.DefaultConfig(), s.clock, s.random, testutil.NopLogger())
	c.AddNotifier(g)
	c.AddNotifier(s.notified)
	s.controller = c

	id := s.startMatch("к", "a", "b")
	_, err := c.ChooseDirection(s.ctx, id, "a", model.DirectionRight)
	s.Require().NoError(err)
	s.notified.reset()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.tick(45 * time.Second)
	}()
	<-g.entered

	go func() {
		defer wg.Done()
		_, _ = c.SubmitMove(s.ctx, id, "a", "о", "кот")
	}()
	time.Sleep(50 * time.Millisecond)
	close(g.release)
	wg.Wait()

	s.Equal([]model.EffectType{
		model.EffectAnnounceReminder,
		model.EffectAnnounceTurn,
		model.EffectPromptDirectionChoice,
	}, s.notified.types())
	s.Equal("ко", s.game(id).Sequence)
}
