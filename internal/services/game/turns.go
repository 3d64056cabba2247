package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/mcoot/baldagame/internal/model"
	"github.com/mcoot/baldagame/internal/services/dictionary"
	"github.com/mcoot/baldagame/internal/services/stats"
	"github.com/mcoot/baldagame/internal/services/turntimer"
	"github.com/mcoot/baldagame/internal/services/validator"
)

// Handle dispatches a decoded inbound event
func (c *Controller) Handle(ctx context.Context, event model.Event) ([]model.Effect, error) {
	switch e := event.(type) {
	case model.StartMatch:
		return c.StartMatch(ctx, e.GameID, e.PlayerID, e.BaseLetter)
	case model.ChooseDirection:
		return c.ChooseDirection(ctx, e.GameID, e.PlayerID, e.Direction)
	case model.SubmitMove:
		return c.SubmitMove(ctx, e.GameID, e.PlayerID, e.Letter, e.Word)
	case model.Pass:
		return c.Pass(ctx, e.GameID, e.PlayerID)
	case model.Resign:
		return c.Resign(ctx, e.GameID, e.PlayerID)
	}
	return nil, fmt.Errorf("unsupported event %T: %w", event, model.ErrInvalidTransition)
}

// StartMatch leaves the lobby and opens the first turn. An empty requester
// skips the host check.
func (c *Controller) StartMatch(ctx context.Context, gameID model.GameID, requester model.PlayerID, baseLetter string) ([]model.Effect, error) {
	baseLetter = dictionary.Normalize(baseLetter)
	if utf8.RuneCountInString(baseLetter) != 1 || !dictionary.IsWord(baseLetter) {
		return nil, model.ErrInvalidLetter
	}

	return c.run(ctx, gameID, func(s *session) ([]model.Effect, error) {
		g := s.game
		if g.Phase != model.PhaseLobby {
			return nil, model.ErrInvalidTransition
		}
		if requester != "" && requester != g.HostID {
			return nil, model.ErrNotHost
		}
		switch n := len(g.PlayersActive); {
		case n < model.MinPlayers:
			return nil, model.ErrRosterTooSmall
		case n > model.MaxPlayers:
			return nil, model.ErrRosterFull
		}

		first, _ := g.NextPlayerAfter("")
		g.HasStarted = true
		g.StartedAt = c.clock.Now()
		g.BaseLetter = baseLetter
		g.Sequence = baseLetter

		effects := []model.Effect{
			c.effect(g, model.EffectMatchStarted, nil, model.MatchStartedPayload{
				BaseLetter: baseLetter,
				Order:      append([]model.PlayerID(nil), g.PlayersActive...),
			}),
		}
		effects = append(effects, c.beginTurn(s, first)...)
		c.commit(ctx, s)

		c.logger.Info("game started",
			slog.String("game_id", string(g.ID)),
			slog.String("base_letter", baseLetter),
			slog.Int("player_count", len(g.PlayersActive)),
		)
		return effects, nil
	})
}

// ChooseDirection records the side for the current turn and restarts the
// turn budget.
func (c *Controller) ChooseDirection(ctx context.Context, gameID model.GameID, playerID model.PlayerID, dir model.Direction) ([]model.Effect, error) {
	if dir != model.DirectionLeft && dir != model.DirectionRight {
		return nil, model.ErrInvalidDirection
	}

	return c.run(ctx, gameID, func(s *session) ([]model.Effect, error) {
		g := s.game
		if err := requireTurn(g, playerID); err != nil {
			return nil, err
		}

		g.PendingDirection = dir
		g.Phase = model.PhaseAwaitingMove
		s.timers.Schedule(playerID)
		c.commit(ctx, s)

		p := g.Players[playerID]
		return []model.Effect{
			c.effect(g, model.EffectPromptMoveEntry, p, model.PromptMovePayload{
				Sequence:  g.Sequence,
				Direction: dir,
				Deadline:  c.deadline(s),
			}),
		}, nil
	})
}

// SubmitMove validates and resolves the current player's move. A rejected
// move returns a *model.RejectionError alongside the rejection effect and
// leaves the game and its timers untouched.
func (c *Controller) SubmitMove(ctx context.Context, gameID model.GameID, playerID model.PlayerID, letter, word string) ([]model.Effect, error) {
	letter = dictionary.Normalize(letter)
	word = dictionary.Normalize(word)

	return c.run(ctx, gameID, func(s *session) ([]model.Effect, error) {
		g := s.game
		if err := requireTurn(g, playerID); err != nil {
			return nil, err
		}
		if g.Phase != model.PhaseAwaitingMove {
			return nil, model.ErrInvalidTransition
		}
		p := g.Players[playerID]

		candidate, err := validator.Validate(g, c.dict, letter, g.PendingDirection, word)
		if err != nil {
			var rejection *model.RejectionError
			if !errors.As(err, &rejection) {
				return nil, err
			}
			c.logger.Debug("move rejected",
				slog.String("game_id", string(g.ID)),
				slog.String("player_id", string(playerID)),
				slog.String("reason", string(rejection.Reason)),
			)
			return []model.Effect{
				c.effect(g, model.EffectAnnounceRejection, p, model.RejectionPayload{Reason: rejection.Reason}),
			}, err
		}

		var effects []model.Effect
		if validator.FormsWord(c.dict, candidate) {
			effects = c.eliminate(s, playerID, model.ReasonFormedWord, candidate)
		} else {
			rec := model.TurnRecord{
				PlayerID:  playerID,
				Letter:    letter,
				Word:      word,
				Direction: g.PendingDirection,
				Timestamp: c.clock.Now(),
			}
			g.WordsUsed = append(g.WordsUsed, rec)
			g.Sequence = candidate
			g.LastDirection = rec.Direction
			g.PendingDirection = ""
			s.timers.Cancel()

			effects = append(effects, c.effect(g, model.EffectAnnounceTurn, p, model.TurnPayload{Record: rec, Sequence: candidate}))
			effects = append(effects, c.advance(s, playerID)...)
		}
		c.commit(ctx, s)
		return effects, nil
	})
}

// Pass skips the current turn. Each player may pass once per match.
func (c *Controller) Pass(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]model.Effect, error) {
	return c.run(ctx, gameID, func(s *session) ([]model.Effect, error) {
		g := s.game
		if err := requireTurn(g, playerID); err != nil {
			return nil, err
		}
		p := g.Players[playerID]
		if p.HasPassed {
			return nil, model.ErrPassUsed
		}

		p.HasPassed = true
		g.PendingDirection = ""
		s.timers.Cancel()

		effects := []model.Effect{
			c.effect(g, model.EffectAnnouncePass, p, model.PassPayload{Sequence: g.Sequence}),
		}
		effects = append(effects, c.advance(s, playerID)...)
		c.commit(ctx, s)
		return effects, nil
	})
}

// Resign eliminates a player at their own request
func (c *Controller) Resign(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]model.Effect, error) {
	return c.run(ctx, gameID, func(s *session) ([]model.Effect, error) {
		g := s.game
		if !g.InTurn() {
			return nil, model.ErrInvalidTransition
		}
		p, ok := g.Players[playerID]
		if !ok {
			return nil, model.ErrNotInGame
		}
		if p.IsEliminated {
			return nil, model.ErrAlreadyEliminated
		}

		effects := c.eliminate(s, playerID, model.ReasonResigned, "")
		c.commit(ctx, s)
		return effects, nil
	})
}

// EliminatePlayer removes a player from the match. Eliminating a player who
// is already out is a no-op.
func (c *Controller) EliminatePlayer(ctx context.Context, gameID model.GameID, playerID model.PlayerID, reason model.EliminationReason) ([]model.Effect, error) {
	return c.run(ctx, gameID, func(s *session) ([]model.Effect, error) {
		g := s.game
		if !g.InTurn() {
			return nil, model.ErrInvalidTransition
		}
		p, ok := g.Players[playerID]
		if !ok {
			return nil, model.ErrNotInGame
		}
		if p.IsEliminated {
			return nil, nil
		}

		effects := c.eliminate(s, playerID, reason, "")
		c.commit(ctx, s)
		return effects, nil
	})
}

// onTimer handles a reminder or timeout firing. Bindings from a superseded
// turn are ignored.
func (c *Controller) onTimer(s *session, kind turntimer.Kind, b turntimer.Binding) {
	ctx := context.Background()

	s.mu.Lock()
	g := s.game
	if s.closed.Load() || !s.timers.IsCurrent(b) || !g.InTurn() || g.CurrentPlayerID != b.PlayerID {
		s.mu.Unlock()
		c.logger.Debug("stale timer ignored",
			slog.String("game_id", string(b.GameID)),
			slog.String("player_id", string(b.PlayerID)),
			slog.String("kind", string(kind)),
		)
		return
	}

	var effects []model.Effect
	switch kind {
	case turntimer.KindReminder:
		effects = []model.Effect{
			c.effect(g, model.EffectAnnounceReminder, g.Players[b.PlayerID], model.ReminderPayload{Remaining: c.timerCfg.ReminderBefore}),
		}
	case turntimer.KindTimeout:
		effects = c.eliminate(s, b.PlayerID, model.ReasonTimedOut, "")
		c.commit(ctx, s)
	}
	s.publish.Lock()
	s.mu.Unlock()

	c.notify(ctx, b.GameID, effects)
	s.publish.Unlock()
}

// eliminate marks a player out, then finishes, abandons or moves the turn on.
// The caller holds the game lock and has checked the player is alive.
func (c *Controller) eliminate(s *session, playerID model.PlayerID, reason model.EliminationReason, candidate string) []model.Effect {
	g := s.game
	p := g.Players[playerID]
	wasCurrent := g.CurrentPlayerID == playerID

	p.IsEliminated = true
	g.PlayersOut = append(g.PlayersOut, playerID)
	if wasCurrent {
		s.timers.Cancel()
		g.PendingDirection = ""
	}

	c.logger.Info("player eliminated",
		slog.String("game_id", string(g.ID)),
		slog.String("player_id", string(playerID)),
		slog.String("reason", string(reason)),
	)

	effects := []model.Effect{
		c.effect(g, model.EffectAnnounceElimination, p, model.EliminationPayload{Reason: reason, Candidate: candidate}),
	}

	switch alive := g.AlivePlayers(); len(alive) {
	case 0:
		effects = append(effects, c.abandon(s, "no players left")...)
	case 1:
		effects = append(effects, c.finish(s, alive[0])...)
	default:
		if wasCurrent {
			effects = append(effects, c.advance(s, playerID)...)
		}
	}
	return effects
}

// advance hands the turn to the next alive player after from
func (c *Controller) advance(s *session, from model.PlayerID) []model.Effect {
	next, ok := s.game.NextPlayerAfter(from)
	if !ok {
		return c.abandon(s, "no players left")
	}
	return c.beginTurn(s, next)
}

func (c *Controller) beginTurn(s *session, playerID model.PlayerID) []model.Effect {
	g := s.game
	g.CurrentPlayerID = playerID
	g.Phase = model.PhaseAwaitingDirection
	g.PendingDirection = ""
	s.timers.Schedule(playerID)

	p := g.Players[playerID]
	return []model.Effect{
		c.effect(g, model.EffectPromptDirectionChoice, p, model.PromptDirectionPayload{
			Sequence:      g.Sequence,
			PassAvailable: !p.HasPassed,
			Deadline:      c.deadline(s),
		}),
	}
}

func (c *Controller) finish(s *session, winner model.PlayerID) []model.Effect {
	g := s.game
	s.timers.Cancel()
	g.Phase = model.PhaseFinished
	g.Winner = winner
	g.CurrentPlayerID = ""
	g.PendingDirection = ""

	summary := stats.Collect(g, c.clock.Now())
	c.logger.Info("game finished",
		slog.String("game_id", string(g.ID)),
		slog.String("winner_id", string(winner)),
		slog.Int("total_turns", summary.TotalTurns),
		slog.Duration("duration", summary.Duration),
	)
	return []model.Effect{
		c.effect(g, model.EffectAnnounceWinner, g.Players[winner], model.WinnerPayload{Stats: summary}),
	}
}

func (c *Controller) abandon(s *session, reason string) []model.Effect {
	g := s.game
	s.timers.Cancel()
	g.Phase = model.PhaseAbandoned
	g.CurrentPlayerID = ""
	g.PendingDirection = ""

	c.logger.Info("game abandoned",
		slog.String("game_id", string(g.ID)),
		slog.String("reason", reason),
	)
	return []model.Effect{
		c.effect(g, model.EffectAnnounceAbandoned, nil, model.AbandonedPayload{Reason: reason}),
	}
}

// requireTurn checks that a turn is running and belongs to the player
func requireTurn(g *model.Game, playerID model.PlayerID) error {
	if !g.InTurn() {
		return model.ErrInvalidTransition
	}
	if g.CurrentPlayerID != playerID {
		return model.ErrNotYourTurn
	}
	return nil
}
