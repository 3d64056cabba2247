package lobby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/baldagame/internal/dependencies/random"
	"github.com/mcoot/baldagame/internal/model"
	"github.com/mcoot/baldagame/internal/services/dictionary"
	"github.com/mcoot/baldagame/internal/services/game"
	"github.com/mcoot/baldagame/internal/storage"
)

const (
	// JoinCodeAlphabet is url-safe and avoids look-alike characters
	JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"

	// maxCodeAttempts bounds the search for an unused join code
	maxCodeAttempts = 16
)

// StartLetters are the letters a random start may pick
var StartLetters = strings.NewReplacer("ъ", "", "ы", "").Replace(dictionary.Alphabet)

// Config holds lobby settings
type Config struct {
	// JoinCodeLength is the length of generated join codes
	JoinCodeLength int
}

// DefaultConfig returns sensible defaults for lobbies
func DefaultConfig() Config {
	return Config{JoinCodeLength: 8}
}

// Controller forms rosters in front of the turn engine. It owns the chat and
// join code registries.
type Controller struct {
	storage storage.Storage
	games   game.ControllerInterface
	random  random.Random
	cfg     Config
	logger  *slog.Logger
}

// NewController creates a new LobbyController
func NewController(
	storage storage.Storage,
	games game.ControllerInterface,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		games:   games,
		random:  random,
		cfg:     cfg,
		logger:  logger,
	}
}

// CreateLobby opens a new lobby hosted by the given player. A zero chat key
// creates a lobby reachable only through its join code.
func (c *Controller) CreateLobby(ctx context.Context, host model.Profile, chat model.ChatKey) (*model.Game, error) {
	if !chat.IsZero() {
		if err := c.releaseChat(ctx, chat); err != nil {
			return nil, err
		}
	}

	code, err := c.newJoinCode(ctx)
	if err != nil {
		return nil, err
	}

	g, err := c.games.Open(ctx, host.ID, host.DisplayName, chat, code)
	if err != nil {
		return nil, err
	}

	if err := c.storage.BindJoinCode(ctx, code, g.ID); err != nil {
		return nil, fmt.Errorf("bind join code: %w", err)
	}
	if !chat.IsZero() {
		if err := c.storage.BindChat(ctx, chat, g.ID); err != nil {
			return nil, fmt.Errorf("bind chat: %w", err)
		}
	}

	c.logger.Info("lobby created",
		slog.String("game_id", string(g.ID)),
		slog.String("join_code", code),
		slog.Int64("chat_id", chat.ChatID),
	)
	return g, nil
}

// releaseChat drops an unstarted lobby bound to the chat. A running game
// keeps the chat.
func (c *Controller) releaseChat(ctx context.Context, chat model.ChatKey) error {
	existing, err := c.FindByChat(ctx, chat)
	if errors.Is(err, model.ErrGameNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.HasStarted {
		return model.ErrGameInProgress
	}

	_, err = c.games.Abandon(ctx, existing.ID, "replaced by a new lobby")
	if err != nil && !errors.Is(err, model.ErrGameNotFound) {
		return err
	}
	return nil
}

func (c *Controller) newJoinCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := c.random.String(c.cfg.JoinCodeLength, JoinCodeAlphabet)
		_, err := c.storage.GameForJoinCode(ctx, code)
		if errors.Is(err, model.ErrJoinCodeNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check join code: %w", err)
		}
	}
	return "", errors.New("no free join code")
}

// Join adds a player to the lobby behind a join code
func (c *Controller) Join(ctx context.Context, code string, player model.Profile) (*model.Game, error) {
	id, err := c.storage.GameForJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if _, err := c.games.AddPlayer(ctx, id, player.ID, player.DisplayName); err != nil {
		return nil, err
	}
	return c.games.Get(ctx, id)
}

// Leave takes a player out of a game. Before the start this removes them from
// the roster; afterwards it is a resignation.
func (c *Controller) Leave(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]model.Effect, error) {
	g, err := c.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if _, ok := g.Player(playerID); !ok {
		return nil, model.ErrNotInGame
	}
	if !g.HasStarted {
		return c.games.RemovePlayer(ctx, gameID, playerID)
	}
	return c.games.Resign(ctx, gameID, playerID)
}

// Start begins the match on behalf of the host. An empty letter picks a
// random one.
func (c *Controller) Start(ctx context.Context, gameID model.GameID, requester model.PlayerID, letter string) ([]model.Effect, error) {
	g, err := c.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.HostID != requester {
		return nil, model.ErrNotHost
	}

	letter = dictionary.Normalize(letter)
	if letter == "" {
		letters := []rune(StartLetters)
		letter = string(letters[c.random.Intn(len(letters))])
	}
	return c.games.StartMatch(ctx, gameID, requester, letter)
}

// Get returns a game by ID
func (c *Controller) Get(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.games.Get(ctx, gameID)
}

// FindByCode returns the game behind a join code
func (c *Controller) FindByCode(ctx context.Context, code string) (*model.Game, error) {
	id, err := c.storage.GameForJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	g, err := c.games.Get(ctx, id)
	if errors.Is(err, model.ErrGameNotFound) {
		_ = c.storage.UnbindJoinCode(ctx, code)
		return nil, model.ErrJoinCodeNotFound
	}
	return g, err
}

// FindByChat returns the game bound to a chat. Stale bindings are removed.
func (c *Controller) FindByChat(ctx context.Context, chat model.ChatKey) (*model.Game, error) {
	id, err := c.storage.GameForChat(ctx, chat)
	if err != nil {
		return nil, err
	}
	g, err := c.games.Get(ctx, id)
	if errors.Is(err, model.ErrGameNotFound) {
		_ = c.storage.UnbindChat(ctx, chat)
	}
	return g, err
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateLobby(ctx context.Context, host model.Profile, chat model.ChatKey) (*model.Game, error)
	Join(ctx context.Context, code string, player model.Profile) (*model.Game, error)
	Leave(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]model.Effect, error)
	Start(ctx context.Context, gameID model.GameID, requester model.PlayerID, letter string) ([]model.Effect, error)
	Get(ctx context.Context, gameID model.GameID) (*model.Game, error)
	FindByCode(ctx context.Context, code string) (*model.Game, error)
	FindByChat(ctx context.Context, chat model.ChatKey) (*model.Game, error)
}

var _ ControllerInterface = (*Controller)(nil)
