package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/baldagame/internal/api/middleware"
	"github.com/mcoot/baldagame/internal/api/request"
	"github.com/mcoot/baldagame/internal/api/response"
	"github.com/mcoot/baldagame/internal/model"
	"github.com/mcoot/baldagame/internal/services/game"
	"github.com/mcoot/baldagame/internal/services/lobby"
)

// GameHandler handles in-match actions of the authenticated player
type GameHandler struct {
	lobbies lobby.ControllerInterface
	games   game.ControllerInterface
}

// NewGameHandler creates a new game handler
func NewGameHandler(lobbies lobby.ControllerInterface, games game.ControllerInterface) *GameHandler {
	return &GameHandler{
		lobbies: lobbies,
		games:   games,
	}
}

type action func(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]model.Effect, error)

// perform resolves the game behind the code, runs the action as the
// authenticated player and writes the effects with the updated view
func (h *GameHandler) perform(w http.ResponseWriter, r *http.Request, act action) {
	profile := middleware.MustGetProfile(r.Context())

	g, err := h.lobbies.FindByCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		WriteError(w, err)
		return
	}

	effects, err := act(r.Context(), g.ID, profile.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, actionResponse(r, h.games.Get, g.ID, effects))
}

// Direction handles POST /api/v1/lobbies/{code}/game/direction
func (h *GameHandler) Direction(w http.ResponseWriter, r *http.Request) {
	var req request.DirectionRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	dir, err := model.ParseDirection(req.Direction)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.perform(w, r, func(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]model.Effect, error) {
		return h.games.ChooseDirection(ctx, gameID, playerID, dir)
	})
}

// Move handles POST /api/v1/lobbies/{code}/game/move
func (h *GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req request.MoveRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	if req.Letter == "" || req.Word == "" {
		WriteError(w, NewInvalidRequestError("letter and word are required"))
		return
	}

	h.perform(w, r, func(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]model.Effect, error) {
		return h.games.SubmitMove(ctx, gameID, playerID, req.Letter, req.Word)
	})
}

// Pass handles POST /api/v1/lobbies/{code}/game/pass
func (h *GameHandler) Pass(w http.ResponseWriter, r *http.Request) {
	h.perform(w, r, h.games.Pass)
}

// Resign handles POST /api/v1/lobbies/{code}/game/resign
func (h *GameHandler) Resign(w http.ResponseWriter, r *http.Request) {
	h.perform(w, r, h.games.Resign)
}

type getter func(ctx context.Context, gameID model.GameID) (*model.Game, error)

// actionResponse attaches the game view after an action. A game that just
// ended is no longer live and comes back without a view.
func actionResponse(r *http.Request, get getter, gameID model.GameID, effects []model.Effect) response.ActionResponse {
	g, _ := get(r.Context(), gameID)
	return response.NewActionResponse(effects, g)
}
