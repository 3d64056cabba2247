package factory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/baldagame/internal/model"
	redisstorage "github.com/mcoot/baldagame/internal/storage/redis"
)

type recorder struct {
	mu      sync.Mutex
	effects []model.Effect
}

func (r *recorder) Notify(_ context.Context, _ model.GameID, effects []model.Effect) {
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

func (r *recorder) last() model.Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.effects[len(r.effects)-1]
}

var chat = model.ChatKey{ChatID: -1001, ThreadID: 7}

type IntegrationSuite struct {
	suite.Suite
	app      *TestApp
	notified *recorder
	ctx      context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.ctx = context.Background()
	s.useApp(NewTestApp())
}

func (s *IntegrationSuite) TearDownTest() {
	s.app.GameController.Close()
}

func (s *IntegrationSuite) useApp(app *TestApp) {
	s.app = app
	s.notified = &recorder{}
	s.app.GameController.AddNotifier(s.notified)
	s.Require().NoError(s.app.LoadTestDictionary())
}

func profile(id, name string) model.Profile {
	return model.Profile{ID: model.PlayerID(id), DisplayName: name, IsGuest: true}
}

// startGame opens a lobby in the chat, seats a second player and starts
func (s *IntegrationSuite) startGame(letter string) model.GameID {
	s.app.MockRandom.QueueString("JOINCODE")
	g, err := s.app.LobbyController.CreateLobby(s.ctx, profile("host", "Хозяин"), chat)
	s.Require().NoError(err)

	_, err = s.app.LobbyController.Join(s.ctx, "JOINCODE", profile("guest", "Гость"))
	s.Require().NoError(err)

	_, err = s.app.LobbyController.Start(s.ctx, g.ID, "host", letter)
	s.Require().NoError(err)
	return g.ID
}

func (s *IntegrationSuite) play(id model.GameID, player model.PlayerID, dir model.Direction, letter, word string) {
	_, err := s.app.GameController.ChooseDirection(s.ctx, id, player, dir)
	s.Require().NoError(err)
	_, err = s.app.GameController.SubmitMove(s.ctx, id, player, letter, word)
	s.Require().NoError(err)
}

func (s *IntegrationSuite) assertGone(id model.GameID) {
	_, err := s.app.GameController.Get(s.ctx, id)
	s.ErrorIs(err, model.ErrGameNotFound)
	_, err = s.app.Storage.GetGame(s.ctx, id)
	s.ErrorIs(err, model.ErrGameNotFound)
	_, err = s.app.LobbyController.FindByChat(s.ctx, chat)
	s.ErrorIs(err, model.ErrGameNotFound)
	_, err = s.app.LobbyController.FindByCode(s.ctx, "JOINCODE")
	s.ErrorIs(err, model.ErrJoinCodeNotFound)
}

func (s *IntegrationSuite) TestFormedWordEndsGame() {
	id := s.startGame("о")

	s.play(id, "host", model.DirectionLeft, "к", "око")
	_, err := s.app.GameController.ChooseDirection(s.ctx, id, "guest", model.DirectionLeft)
	s.Require().NoError(err)
	effects, err := s.app.GameController.SubmitMove(s.ctx, id, "guest", "о", "сокол")
	s.Require().NoError(err)

	s.Equal(model.EffectAnnounceElimination, effects[0].Type)
	s.Equal(model.EliminationPayload{Reason: model.ReasonFormedWord, Candidate: "око"}, effects[0].Payload)

	winner := s.notified.last()
	s.Equal(model.EffectAnnounceWinner, winner.Type)
	s.Equal(model.PlayerID("host"), winner.PlayerID)
	stats := winner.Payload.(model.WinnerPayload).Stats
	s.Equal(1, stats.TotalTurns)
	s.Equal([]string{"Гость"}, stats.Eliminated)
	s.Equal("Хозяин", stats.WinnerName)

	s.assertGone(id)
}

func (s *IntegrationSuite) TestTimeoutEndsTwoPlayerGame() {
	id := s.startGame("к")

	s.app.Advance(45 * time.Second)
	s.Contains(s.notified.types(), model.EffectAnnounceReminder)

	s.app.Advance(15 * time.Second)
	s.Equal(model.EffectAnnounceWinner, s.notified.last().Type)
	s.Equal(model.PlayerID("guest"), s.notified.last().PlayerID)

	s.assertGone(id)
	s.Zero(s.app.MockScheduler.Pending())
}

func (s *IntegrationSuite) TestRestartResumesGame() {
	id := s.startGame("к")
	s.play(id, "host", model.DirectionRight, "о", "кот")
	s.app.GameController.Close()

	s.useApp(NewTestAppWithStorage(s.app.Storage))
	restored, err := s.app.GameController.Restore(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, restored)

	g, err := s.app.LobbyController.FindByChat(s.ctx, chat)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("guest"), g.CurrentPlayerID)
	s.Equal("ко", g.Sequence)
	s.Equal(2, s.app.MockScheduler.Pending(), "resumed turn has a fresh timer pair")

	s.play(id, "guest", model.DirectionRight, "с", "кость")

	g, err = s.app.GameController.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("кос", g.Sequence)
	s.Equal(model.PlayerID("host"), g.CurrentPlayerID)
}

func (s *IntegrationSuite) TestNewLobbyReplacesIdleLobbyInChat() {
	s.app.MockRandom.QueueString("FIRST123", "SECOND12")
	first, err := s.app.LobbyController.CreateLobby(s.ctx, profile("host", "Хозяин"), chat)
	s.Require().NoError(err)
	second, err := s.app.LobbyController.CreateLobby(s.ctx, profile("other", "Другой"), chat)
	s.Require().NoError(err)

	found, err := s.app.LobbyController.FindByChat(s.ctx, chat)
	s.Require().NoError(err)
	s.Equal(second.ID, found.ID)

	_, err = s.app.GameController.Get(s.ctx, first.ID)
	s.ErrorIs(err, model.ErrGameNotFound)
	s.Contains(s.notified.types(), model.EffectAnnounceAbandoned)
}

func (s *IntegrationSuite) TestLoadDictionaryFallsBackToStorage() {
	_ = s.app.Storage.SaveDictionaryWords(s.ctx, []string{"ёж", "кот"})

	s.Require().NoError(s.app.LoadDictionary(s.ctx, nil))
	s.True(s.app.DictionaryService.Contains("еж"))
	s.Equal(2, s.app.DictionaryService.WordCount())
}

func (s *IntegrationSuite) TestLoadDictionaryWithoutSourcesIsEmpty() {
	s.Require().NoError(s.app.LoadDictionary(s.ctx, nil))
	s.True(s.app.DictionaryService.IsLoaded())
	s.Zero(s.app.DictionaryService.WordCount())
}

// RedisIntegrationSuite runs the restart flow against the Redis backend
type RedisIntegrationSuite struct {
	suite.Suite
	mr  *miniredis.Miniredis
	ctx context.Context
}

func TestRedisIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RedisIntegrationSuite))
}

func (s *RedisIntegrationSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	s.ctx = context.Background()
}

func (s *RedisIntegrationSuite) newApp() *TestApp {
	client := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	app := NewTestAppWithStorage(redisstorage.NewWithClient(client, redisstorage.DefaultConfig()))
	s.Require().NoError(app.LoadTestDictionary())
	return app
}

func (s *RedisIntegrationSuite) TestGameSurvivesRestart() {
	app := s.newApp()
	app.MockRandom.QueueString("REDISJOIN")
	g, err := app.LobbyController.CreateLobby(s.ctx, profile("host", "Хозяин"), chat)
	s.Require().NoError(err)
	_, err = app.LobbyController.Join(s.ctx, "REDISJOIN", profile("guest", "Гость"))
	s.Require().NoError(err)
	_, err = app.LobbyController.Start(s.ctx, g.ID, "host", "к")
	s.Require().NoError(err)
	s.Require().NoError(app.Close())

	app = s.newApp()
	defer app.Close()

	restored, err := app.GameController.Restore(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, restored)

	found, err := app.LobbyController.FindByCode(s.ctx, "REDISJOIN")
	s.Require().NoError(err)
	s.Equal(g.ID, found.ID)
	s.Equal(model.PhaseAwaitingDirection, found.Phase)
	s.Equal(model.PlayerID("host"), found.CurrentPlayerID)

	_, err = app.LobbyController.Leave(s.ctx, g.ID, "host")
	s.Require().NoError(err)

	_, err = app.Storage.GetGame(s.ctx, g.ID)
	s.ErrorIs(err, model.ErrGameNotFound)
	s.False(s.mr.Exists("balda:idx:join_code:REDISJOIN"))
}
