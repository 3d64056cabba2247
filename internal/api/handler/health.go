package handler

import (
	"net/http"

	"github.com/mcoot/baldagame/internal/api/response"
)

// GameCounter reports the number of live games
type GameCounter interface {
	ActiveGames() int
}

// DictionaryStatus reports whether words are available
type DictionaryStatus interface {
	IsLoaded() bool
	WordCount() int
}

// HealthHandler reports liveness. An empty dictionary degrades the service
// without taking it down.
type HealthHandler struct {
	games GameCounter
	dict  DictionaryStatus
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(games GameCounter, dict DictionaryStatus) *HealthHandler {
	return &HealthHandler{games: games, dict: dict}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, _ *http.Request) {
	resp := response.Health{
		Status:           "ok",
		ActiveGames:      h.games.ActiveGames(),
		DictionaryLoaded: h.dict.IsLoaded(),
		DictionaryWords:  h.dict.WordCount(),
	}
	if !resp.DictionaryLoaded {
		resp.Status = "degraded"
	}
	response.JSON(w, http.StatusOK, resp)
}
