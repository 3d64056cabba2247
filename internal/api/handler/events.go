package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/baldagame/internal/api/middleware"
	"github.com/mcoot/baldagame/internal/api/sse"
	"github.com/mcoot/baldagame/internal/services/lobby"
)

// EventsHandler streams the effects of a game as server-sent events
type EventsHandler struct {
	lobbies lobby.ControllerInterface
	hubs    *sse.HubManager
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(lobbies lobby.ControllerInterface, hubs *sse.HubManager) *EventsHandler {
	return &EventsHandler{
		lobbies: lobbies,
		hubs:    hubs,
	}
}

// Stream handles GET /api/v1/lobbies/{code}/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	profile := middleware.MustGetProfile(r.Context())

	g, err := h.lobbies.FindByCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		WriteError(w, err)
		return
	}

	sse.ServeSSE(w, r, h.hubs.GetOrCreateHub(g.ID), profile.ID)
}
