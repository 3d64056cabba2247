package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/baldagame/internal/api"
	"github.com/mcoot/baldagame/internal/config"
	"github.com/mcoot/baldagame/internal/factory"
	"github.com/mcoot/baldagame/internal/transport/telegram"
)

// sessionSweepInterval is how often expired sessions are purged
const sessionSweepInterval = 10 * time.Minute

func main() {
	// A missing .env file is fine; the environment may already be set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisCfg := cfg.Redis
	app, err := factory.New(factory.Config{
		AuthConfig:  cfg.Auth,
		TurnConfig:  cfg.Turn,
		LobbyConfig: cfg.Lobby,
		Logger:      logger,
		StorageType: cfg.StorageType,
		RedisConfig: &redisCfg,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close application", slog.String("error", err.Error()))
		}
	}()

	if err := app.LoadDictionary(ctx, cfg.DictionaryPaths); err != nil {
		logger.Warn("could not load dictionary", slog.String("error", err.Error()))
	}

	if _, err := app.GameController.Restore(ctx); err != nil {
		logger.Warn("could not restore games", slog.String("error", err.Error()))
	}

	if cfg.TelegramToken != "" {
		bot, err := telegram.New(cfg.TelegramToken, cfg.TelegramDebug, app.LobbyController, app.GameController, logger)
		if err != nil {
			return err
		}
		app.GameController.AddNotifier(bot)
		go func() {
			if err := bot.Run(ctx); err != nil {
				logger.Error("telegram bot stopped", slog.String("error", err.Error()))
			}
		}()
	}

	go sweepSessions(ctx, app, logger)

	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		AuthService:     app.AuthService,
		LobbyController: app.LobbyController,
		GameController:  app.GameController,
		Dictionary:      app.DictionaryService,
		HubManager:      app.HubManager,
	})

	server := api.NewServer(router, cfg.Server, logger)
	return server.Run(ctx)
}

func sweepSessions(ctx context.Context, app *factory.App, logger *slog.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := app.AuthService.CleanExpiredSessions(); n > 0 {
				logger.Info("expired sessions removed", slog.Int("count", n))
			}
			if n := app.HubManager.CleanupEmptyHubs(); n > 0 {
				logger.Debug("idle event hubs removed", slog.Int("count", n))
			}
		}
	}
}
