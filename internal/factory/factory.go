package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/mcoot/baldagame/internal/api/sse"
	"github.com/mcoot/baldagame/internal/dependencies/clock"
	"github.com/mcoot/baldagame/internal/dependencies/random"
	"github.com/mcoot/baldagame/internal/dependencies/scheduler"
	"github.com/mcoot/baldagame/internal/services/auth"
	"github.com/mcoot/baldagame/internal/services/dictionary"
	"github.com/mcoot/baldagame/internal/services/game"
	"github.com/mcoot/baldagame/internal/services/lobby"
	"github.com/mcoot/baldagame/internal/services/turntimer"
	"github.com/mcoot/baldagame/internal/storage"
	"github.com/mcoot/baldagame/internal/storage/memory"
	redisstorage "github.com/mcoot/baldagame/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Storage storage.Storage

	Clock     clock.Clock
	Random    random.Random
	Scheduler scheduler.Scheduler

	DictionaryService *dictionary.Service
	GameController    *game.Controller
	LobbyController   *lobby.Controller
	AuthService       *auth.Service
	HubManager        *sse.HubManager
	Broadcaster       *sse.Broadcaster

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Zero values fall back to each component's DefaultConfig
	AuthConfig  auth.Config
	TurnConfig  turntimer.Config
	LobbyConfig lobby.Config

	// Logger is the application logger; nil discards logs
	Logger *slog.Logger

	// StorageType selects the storage backend ("memory" or "redis");
	// empty means memory
	StorageType string
	// RedisConfig is required when StorageType is "redis"
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}

	var store storage.Storage
	switch cfg.StorageType {
	case "", StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory' or 'redis'", cfg.StorageType)
	}

	return newWithDependencies(store, clock.New(), random.New(), scheduler.New(), withDefaults(cfg), logger), nil
}

func withDefaults(cfg Config) Config {
	if cfg.AuthConfig.SessionDuration == 0 {
		cfg.AuthConfig = auth.DefaultConfig()
	}
	if cfg.TurnConfig.Timeout == 0 {
		cfg.TurnConfig = turntimer.DefaultConfig()
	}
	if cfg.LobbyConfig.JoinCodeLength == 0 {
		cfg.LobbyConfig = lobby.DefaultConfig()
	}
	return cfg
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	sched scheduler.Scheduler,
	cfg Config,
	logger *slog.Logger,
) *App {
	dictService := dictionary.New(store, logger)
	gameController := game.NewController(store, dictService, sched, cfg.TurnConfig, clk, rnd, logger)
	lobbyController := lobby.NewController(store, gameController, rnd, cfg.LobbyConfig, logger)
	authService := auth.New(store, clk, rnd, cfg.AuthConfig, logger)
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)

	gameController.AddNotifier(broadcaster)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		Scheduler:         sched,
		DictionaryService: dictService,
		GameController:    gameController,
		LobbyController:   lobbyController,
		AuthService:       authService,
		HubManager:        hubManager,
		Broadcaster:       broadcaster,
		logger:            logger,
	}
}

// LoadDictionary reads the word lists, or the words mirrored to storage by
// an earlier run when no list is configured. Failures leave an empty
// dictionary behind.
func (a *App) LoadDictionary(ctx context.Context, paths []string) error {
	if len(paths) > 0 {
		return a.DictionaryService.LoadFromFiles(ctx, paths...)
	}

	err := a.DictionaryService.LoadFromStorage(ctx)
	if err == nil {
		return nil
	}
	a.logger.Warn("no dictionary available, every word will be rejected", slog.Any("error", err))
	return a.DictionaryService.LoadWords(nil)
}

// Close stops timers and event streams and releases the storage
func (a *App) Close() error {
	a.GameController.Close()
	a.HubManager.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
