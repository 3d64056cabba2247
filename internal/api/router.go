package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/baldagame/internal/api/handler"
	"github.com/mcoot/baldagame/internal/api/middleware"
	"github.com/mcoot/baldagame/internal/api/sse"
	"github.com/mcoot/baldagame/internal/services/auth"
	"github.com/mcoot/baldagame/internal/services/game"
	"github.com/mcoot/baldagame/internal/services/lobby"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	AuthService     auth.ServiceInterface
	LobbyController lobby.ControllerInterface
	GameController  game.ControllerInterface
	Dictionary      handler.DictionaryStatus
	HubManager      *sse.HubManager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	lobbyHandler := handler.NewLobbyHandler(cfg.LobbyController)
	gameHandler := handler.NewGameHandler(cfg.LobbyController, cfg.GameController)
	eventsHandler := handler.NewEventsHandler(cfg.LobbyController, cfg.HubManager)
	healthHandler := handler.NewHealthHandler(cfg.GameController, cfg.Dictionary)

	authMiddleware := middleware.Auth(cfg.AuthService)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Identity routes need no session
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	players := api.PathPrefix("/players").Subrouter()
	players.Use(authMiddleware)
	players.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)

	lobbies := api.PathPrefix("/lobbies").Subrouter()
	lobbies.Use(authMiddleware)
	lobbies.HandleFunc("", lobbyHandler.Create).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}", lobbyHandler.Get).Methods(http.MethodGet)
	lobbies.HandleFunc("/{code}/join", lobbyHandler.Join).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/leave", lobbyHandler.Leave).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/start", lobbyHandler.Start).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/events", eventsHandler.Stream).Methods(http.MethodGet)

	lobbies.HandleFunc("/{code}/game/direction", gameHandler.Direction).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/game/move", gameHandler.Move).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/game/pass", gameHandler.Pass).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/game/resign", gameHandler.Resign).Methods(http.MethodPost)

	return r
}
