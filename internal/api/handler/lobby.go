package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/baldagame/internal/api/middleware"
	"github.com/mcoot/baldagame/internal/api/request"
	"github.com/mcoot/baldagame/internal/api/response"
	"github.com/mcoot/baldagame/internal/model"
	"github.com/mcoot/baldagame/internal/services/lobby"
)

// LobbyHandler handles lobby-related endpoints. Lobbies are addressed by
// join code.
type LobbyHandler struct {
	lobbies lobby.ControllerInterface
}

// NewLobbyHandler creates a new lobby handler
func NewLobbyHandler(lobbies lobby.ControllerInterface) *LobbyHandler {
	return &LobbyHandler{lobbies: lobbies}
}

// Create handles POST /api/v1/lobbies
func (h *LobbyHandler) Create(w http.ResponseWriter, r *http.Request) {
	profile := middleware.MustGetProfile(r.Context())

	g, err := h.lobbies.CreateLobby(r.Context(), *profile, model.ChatKey{})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameFromModel(g))
}

// Get handles GET /api/v1/lobbies/{code}
func (h *LobbyHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.lobbies.FindByCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Join handles POST /api/v1/lobbies/{code}/join
func (h *LobbyHandler) Join(w http.ResponseWriter, r *http.Request) {
	profile := middleware.MustGetProfile(r.Context())

	g, err := h.lobbies.Join(r.Context(), mux.Vars(r)["code"], *profile)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Leave handles POST /api/v1/lobbies/{code}/leave
func (h *LobbyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	profile := middleware.MustGetProfile(r.Context())

	g, err := h.lobbies.FindByCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		WriteError(w, err)
		return
	}

	effects, err := h.lobbies.Leave(r.Context(), g.ID, profile.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, actionResponse(r, h.lobbies.Get, g.ID, effects))
}

// Start handles POST /api/v1/lobbies/{code}/start
func (h *LobbyHandler) Start(w http.ResponseWriter, r *http.Request) {
	profile := middleware.MustGetProfile(r.Context())

	var req request.StartRequest
	if err := decodeBody(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.lobbies.FindByCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		WriteError(w, err)
		return
	}

	effects, err := h.lobbies.Start(r.Context(), g.ID, profile.ID, req.Letter)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, actionResponse(r, h.lobbies.Get, g.ID, effects))
}
