package game

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/mcoot/baldagame/internal/model"
)

// Open creates a lobby-phase game with the host as its first player
func (c *Controller) Open(ctx context.Context, host model.PlayerID, hostName string, chat model.ChatKey, joinCode string) (*model.Game, error) {
	hostName = strings.TrimSpace(hostName)
	if !model.ValidName(hostName) {
		return nil, model.ErrInvalidName
	}

	g := model.NewGame(model.GameID(c.random.ID()), host, hostName, chat, joinCode, c.clock.Now())
	s := c.newSession(g)

	c.mu.Lock()
	c.sessions[g.ID] = s
	c.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	c.commit(ctx, s)

	c.logger.Info("lobby opened",
		slog.String("game_id", string(g.ID)),
		slog.String("host_id", string(host)),
		slog.String("join_code", joinCode),
	)
	return g.Clone(), nil
}

// AddPlayer adds a participant to a game that has not started yet
func (c *Controller) AddPlayer(ctx context.Context, gameID model.GameID, playerID model.PlayerID, name string) ([]model.Effect, error) {
	name = strings.TrimSpace(name)
	if !model.ValidName(name) {
		return nil, model.ErrInvalidName
	}

	return c.run(ctx, gameID, func(s *session) ([]model.Effect, error) {
		g := s.game
		if g.Phase != model.PhaseLobby {
			return nil, model.ErrGameInProgress
		}
		if _, ok := g.Players[playerID]; ok {
			return nil, model.ErrAlreadyInGame
		}
		if len(g.PlayersActive) >= model.MaxPlayers {
			return nil, model.ErrRosterFull
		}

		p := &model.Player{ID: playerID, Name: name}
		g.Players[playerID] = p
		g.PlayersActive = append(g.PlayersActive, playerID)
		c.commit(ctx, s)

		c.logger.Info("player joined",
			slog.String("game_id", string(g.ID)),
			slog.String("player_id", string(playerID)),
			slog.Int("player_count", len(g.PlayersActive)),
		)
		return []model.Effect{
			c.effect(g, model.EffectPlayerJoined, p, model.PlayerJoinedPayload{PlayerCount: len(g.PlayersActive)}),
		}, nil
	})
}

// RemovePlayer takes a participant out of a lobby. The host role moves to
// the next player in join order and an empty lobby is dropped.
func (c *Controller) RemovePlayer(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]model.Effect, error) {
	return c.run(ctx, gameID, func(s *session) ([]model.Effect, error) {
		g := s.game
		if g.Phase != model.PhaseLobby {
			return nil, model.ErrGameInProgress
		}
		p, ok := g.Players[playerID]
		if !ok {
			return nil, model.ErrNotInGame
		}

		delete(g.Players, playerID)
		g.PlayersActive = slices.DeleteFunc(g.PlayersActive, func(id model.PlayerID) bool { return id == playerID })

		payload := model.PlayerLeftPayload{}
		if len(g.PlayersActive) > 0 && playerID == g.HostID {
			g.HostID = g.PlayersActive[0]
			g.Players[g.HostID].IsHost = true
			payload.NewHostID = g.HostID
		}
		effects := []model.Effect{c.effect(g, model.EffectPlayerLeft, p, payload)}

		if len(g.PlayersActive) == 0 {
			g.Phase = model.PhaseAbandoned
			effects = append(effects, c.effect(g, model.EffectAnnounceAbandoned, nil, model.AbandonedPayload{Reason: "lobby empty"}))
			c.logger.Info("lobby closed", slog.String("game_id", string(g.ID)))
		}

		c.commit(ctx, s)
		return effects, nil
	})
}

// Abandon ends a game that has not finished yet, from any phase
func (c *Controller) Abandon(ctx context.Context, gameID model.GameID, reason string) ([]model.Effect, error) {
	return c.run(ctx, gameID, func(s *session) ([]model.Effect, error) {
		effects := c.abandon(s, reason)
		c.commit(ctx, s)
		return effects, nil
	})
}
