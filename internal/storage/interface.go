package storage

import (
	"context"

	"github.com/mcoot/baldagame/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Profile operations
	SaveProfile(ctx context.Context, profile *model.Profile) error
	GetProfile(ctx context.Context, id model.PlayerID) (*model.Profile, error)
	DeleteProfile(ctx context.Context, id model.PlayerID) error

	// Credentials operations
	SaveCredentials(ctx context.Context, creds *model.Credentials) error
	GetCredentials(ctx context.Context, playerID model.PlayerID) (*model.Credentials, error)
	GetCredentialsByUsername(ctx context.Context, username string) (*model.Credentials, error)

	// Game snapshot operations
	SaveGame(ctx context.Context, snapshot *model.Snapshot) error
	GetGame(ctx context.Context, id model.GameID) (*model.Snapshot, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	ListGames(ctx context.Context) ([]*model.Snapshot, error)

	// Registry operations
	BindChat(ctx context.Context, chat model.ChatKey, id model.GameID) error
	GameForChat(ctx context.Context, chat model.ChatKey) (model.GameID, error)
	UnbindChat(ctx context.Context, chat model.ChatKey) error
	BindJoinCode(ctx context.Context, code string, id model.GameID) error
	GameForJoinCode(ctx context.Context, code string) (model.GameID, error)
	UnbindJoinCode(ctx context.Context, code string) error

	// Dictionary operations
	GetDictionaryWords(ctx context.Context) ([]string, error)
	SaveDictionaryWords(ctx context.Context, words []string) error
}
