package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/baldagame/internal/dependencies/clock"
	"github.com/mcoot/baldagame/internal/dependencies/random"
	"github.com/mcoot/baldagame/internal/dependencies/scheduler"
	"github.com/mcoot/baldagame/internal/model"
	"github.com/mcoot/baldagame/internal/services/turntimer"
	"github.com/mcoot/baldagame/internal/services/validator"
	"github.com/mcoot/baldagame/internal/storage"
)

// Notifier receives the effects of an operation or a timer firing after the
// game lock has been released. Batches for one game arrive in the order the
// game applied them. Notify must not run operations on the game it is
// notified about.
type Notifier interface {
	Notify(ctx context.Context, gameID model.GameID, effects []model.Effect)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(ctx context.Context, gameID model.GameID, effects []model.Effect)

// Notify calls f
func (f NotifierFunc) Notify(ctx context.Context, gameID model.GameID, effects []model.Effect) {
	f(ctx, gameID, effects)
}

// session is one live game and its timer pair. mu serializes every
// operation and timer callback on the game. publish is taken before mu is
// released and held while effects go out, so batches leave in commit order.
type session struct {
	mu      sync.Mutex
	publish sync.Mutex
	game    *model.Game
	timers  *turntimer.Timers
	closed  atomic.Bool
}

// Controller is the turn engine. It owns every live game, serializes work
// per game and lets different games proceed in parallel.
type Controller struct {
	storage   storage.Storage
	dict      validator.Lookup
	scheduler scheduler.Scheduler
	timerCfg  turntimer.Config
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger

	mu       sync.RWMutex
	sessions map[model.GameID]*session
	// ended holds games torn down by this process. Their IDs are never
	// adopted again, even if a stale snapshot is still readable.
	ended map[model.GameID]struct{}

	notifyMu  sync.RWMutex
	notifiers []Notifier
}

// NewController creates a new turn engine
func NewController(
	storage storage.Storage,
	dict validator.Lookup,
	sched scheduler.Scheduler,
	timerCfg turntimer.Config,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   storage,
		dict:      dict,
		scheduler: sched,
		timerCfg:  timerCfg,
		clock:     clock,
		random:    random,
		logger:    logger,
		sessions:  make(map[model.GameID]*session),
		ended:     make(map[model.GameID]struct{}),
	}
}

// AddNotifier registers a receiver for effects
func (c *Controller) AddNotifier(n Notifier) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.notifiers = append(c.notifiers, n)
}

// Get returns a copy of a live game
func (c *Controller) Get(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	s, err := c.lookup(ctx, gameID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return nil, model.ErrGameNotFound
	}
	return s.game.Clone(), nil
}

// ActiveGames returns the number of live games
func (c *Controller) ActiveGames() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// Restore loads every stored snapshot into the engine. Started games get a
// fresh timer pair for their current player. Snapshots that cannot describe
// a live game are skipped.
func (c *Controller) Restore(ctx context.Context) (int, error) {
	snapshots, err := c.storage.ListGames(ctx)
	if err != nil {
		return 0, fmt.Errorf("list games: %w", err)
	}

	restored := 0
	for _, snapshot := range snapshots {
		if _, err := c.adopt(snapshot); err != nil {
			c.logger.Warn("skipping stored game",
				slog.String("game_id", string(snapshot.GameID)),
				slog.String("error", err.Error()),
			)
			continue
		}
		restored++
	}

	c.logger.Info("games restored", slog.Int("count", restored))
	return restored, nil
}

// Close cancels every timer and detaches all games. Stored snapshots are
// kept so a later Restore can resume them.
func (c *Controller) Close() {
	c.mu.Lock()
	sessions := make([]*session, 0, len(c.sessions))
	for _, s := range c.sessions {
		sessions = append(sessions, s)
	}
	c.sessions = make(map[model.GameID]*session)
	c.mu.Unlock()

	for _, s := range sessions {
		s.mu.Lock()
		s.closed.Store(true)
		s.timers.Cancel()
		s.mu.Unlock()
	}
}

func (c *Controller) newSession(g *model.Game) *session {
	s := &session{game: g}
	s.timers = turntimer.New(g.ID, c.scheduler, c.timerCfg, func(kind turntimer.Kind, b turntimer.Binding) {
		c.onTimer(s, kind, b)
	})
	return s
}

// lookup finds a live game, loading it from storage on a miss. A game that
// is being torn down reports ErrGameNotFound.
func (c *Controller) lookup(ctx context.Context, gameID model.GameID) (*session, error) {
	c.mu.RLock()
	s, ok := c.sessions[gameID]
	_, ended := c.ended[gameID]
	c.mu.RUnlock()
	if ended {
		return nil, model.ErrGameNotFound
	}
	if !ok {
		snapshot, err := c.storage.GetGame(ctx, gameID)
		if err != nil {
			if errors.Is(err, model.ErrGameNotFound) {
				return nil, model.ErrGameNotFound
			}
			return nil, fmt.Errorf("load game: %w", err)
		}
		if s, err = c.adopt(snapshot); err != nil {
			return nil, err
		}
	}
	if s.closed.Load() {
		return nil, model.ErrGameNotFound
	}
	return s, nil
}

// adopt registers a session for a stored snapshot unless one already exists.
// Snapshots of games that ended here are refused.
func (c *Controller) adopt(snapshot *model.Snapshot) (*session, error) {
	g, err := snapshot.Game()
	if err != nil {
		return nil, err
	}

	// Not yet visible to anyone else, so no lock is needed to schedule
	s := c.newSession(g)
	if g.InTurn() {
		s.timers.Schedule(g.CurrentPlayerID)
	}

	c.mu.Lock()
	_, ended := c.ended[g.ID]
	existing, ok := c.sessions[g.ID]
	if ended || ok {
		c.mu.Unlock()
		s.mu.Lock()
		s.closed.Store(true)
		s.timers.Cancel()
		s.mu.Unlock()
		if ended {
			return nil, model.ErrGameNotFound
		}
		return existing, nil
	}
	c.sessions[g.ID] = s
	c.mu.Unlock()

	return s, nil
}

// run executes op under the game lock and publishes its effects afterwards
func (c *Controller) run(ctx context.Context, gameID model.GameID, op func(s *session) ([]model.Effect, error)) ([]model.Effect, error) {
	s, err := c.lookup(ctx, gameID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return nil, model.ErrGameNotFound
	}
	effects, err := op(s)
	s.publish.Lock()
	s.mu.Unlock()

	c.notify(ctx, gameID, effects)
	s.publish.Unlock()
	return effects, err
}

func (c *Controller) notify(ctx context.Context, gameID model.GameID, effects []model.Effect) {
	if len(effects) == 0 {
		return
	}
	c.notifyMu.RLock()
	notifiers := append([]Notifier(nil), c.notifiers...)
	c.notifyMu.RUnlock()

	for _, n := range notifiers {
		n.Notify(ctx, gameID, effects)
	}
}

// commit mirrors the game to storage, or tears it down once it is over.
// Storage failures are logged and never roll back the in-memory state.
func (c *Controller) commit(ctx context.Context, s *session) {
	g := s.game
	if g.IsTerminal() {
		c.drop(ctx, s)
		return
	}
	if err := c.storage.SaveGame(ctx, model.NewSnapshot(g)); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(g.ID)),
			slog.String("error", err.Error()),
		)
	}
}

// drop removes a finished game from storage, the indexes and the registry.
// The session stays registered as closed until storage no longer holds the
// game, so a concurrent lookup cannot reload the last stored snapshot.
func (c *Controller) drop(ctx context.Context, s *session) {
	g := s.game
	s.closed.Store(true)
	s.timers.Cancel()

	logErr := func(msg string, err error) {
		if err != nil {
			c.logger.Error(msg,
				slog.String("game_id", string(g.ID)),
				slog.String("error", err.Error()),
			)
		}
	}

	logErr("failed to delete game", c.storage.DeleteGame(ctx, g.ID))
	if g.JoinCode != "" {
		logErr("failed to unbind join code", c.storage.UnbindJoinCode(ctx, g.JoinCode))
	}
	if !g.Chat.IsZero() {
		// Another lobby may already own the chat
		if bound, err := c.storage.GameForChat(ctx, g.Chat); err == nil && bound == g.ID {
			logErr("failed to unbind chat", c.storage.UnbindChat(ctx, g.Chat))
		}
	}

	c.mu.Lock()
	if c.sessions[g.ID] == s {
		delete(c.sessions, g.ID)
	}
	c.ended[g.ID] = struct{}{}
	c.mu.Unlock()
}

func (c *Controller) effect(g *model.Game, t model.EffectType, p *model.Player, payload any) model.Effect {
	e := model.Effect{
		Type:      t,
		Timestamp: c.clock.Now(),
		GameID:    g.ID,
		Chat:      g.Chat,
		Payload:   payload,
	}
	if p != nil {
		e.PlayerID = p.ID
		e.PlayerName = p.Name
	}
	return e
}

func (c *Controller) deadline(s *session) time.Time {
	return c.clock.Now().Add(s.timers.Timeout())
}

// Interface for dependency injection
type ControllerInterface interface {
	AddNotifier(n Notifier)
	Get(ctx context.Context, gameID model.GameID) (*model.Game, error)
	ActiveGames() int
	Restore(ctx context.Context) (int, error)
	Close()

	Open(ctx context.Context, host model.PlayerID, hostName string, chat model.ChatKey, joinCode string) (*model.Game, error)
	AddPlayer(ctx context.Context, gameID model.GameID, playerID model.PlayerID, name string) ([]model.Effect, error)
	RemovePlayer(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]model.Effect, error)
	Abandon(ctx context.Context, gameID model.GameID, reason string) ([]model.Effect, error)

	StartMatch(ctx context.Context, gameID model.GameID, requester model.PlayerID, baseLetter string) ([]model.Effect, error)
	ChooseDirection(ctx context.Context, gameID model.GameID, playerID model.PlayerID, dir model.Direction) ([]model.Effect, error)
	SubmitMove(ctx context.Context, gameID model.GameID, playerID model.PlayerID, letter, word string) ([]model.Effect, error)
	Pass(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]model.Effect, error)
	Resign(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]model.Effect, error)
	EliminatePlayer(ctx context.Context, gameID model.GameID, playerID model.PlayerID, reason model.EliminationReason) ([]model.Effect, error)
	Handle(ctx context.Context, event model.Event) ([]model.Effect, error)
}

var _ ControllerInterface = (*Controller)(nil)
