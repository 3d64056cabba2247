package sse

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/baldagame/internal/model"
	"github.com/mcoot/baldagame/internal/services/game"
)

// Broadcaster publishes engine effects to the event streams of their game.
// Each effect becomes one event named after its type with the effect as JSON.
type Broadcaster struct {
	hubs   *HubManager
	logger *slog.Logger
}

var _ game.Notifier = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubs *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubs:   hubs,
		logger: logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Notify implements game.Notifier
func (b *Broadcaster) Notify(_ context.Context, gameID model.GameID, effects []model.Effect) {
	hub := b.hubs.GetHub(gameID)
	if hub == nil {
		return
	}

	over := false
	for _, e := range effects {
		data, err := json.Marshal(e)
		if err != nil {
			b.logger.Error("sse failed to encode effect",
				slog.String("game_id", string(gameID)),
				slog.String("type", string(e.Type)),
				slog.Any("error", err))
			continue
		}
		hub.BroadcastEvent(string(e.Type), string(data))

		if e.Type == model.EffectAnnounceWinner || e.Type == model.EffectAnnounceAbandoned {
			over = true
		}
	}

	if over {
		b.hubs.RemoveHub(gameID)
	}
}
