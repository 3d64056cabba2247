package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/baldagame/internal/model"
	"github.com/mcoot/baldagame/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// getJSON loads and decodes a JSON value, mapping a missing key to notFound
func (s *Storage) getJSON(ctx context.Context, key string, dst any, notFound error) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, dst)
}

// getString loads a plain string value, mapping a missing key to notFound
func (s *Storage) getString(ctx context.Context, key string, notFound error) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", notFound
		}
		return "", err
	}
	return val, nil
}

// Profile operations

func (s *Storage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	// Apply TTL only for guest profiles
	var ttl time.Duration
	if profile.IsGuest {
		ttl = s.cfg.GuestProfileTTL
	}
	return s.client.Set(ctx, profileKey(profile.ID), data, ttl).Err()
}

func (s *Storage) GetProfile(ctx context.Context, id model.PlayerID) (*model.Profile, error) {
	var profile model.Profile
	if err := s.getJSON(ctx, profileKey(id), &profile, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Storage) DeleteProfile(ctx context.Context, id model.PlayerID) error {
	return s.client.Del(ctx, profileKey(id)).Err()
}

// Credentials operations

func (s *Storage) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, credentialsKey(creds.PlayerID), data, 0)
	pipe.Set(ctx, usernameIndexKey(creds.Username), string(creds.PlayerID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetCredentials(ctx context.Context, playerID model.PlayerID) (*model.Credentials, error) {
	var creds model.Credentials
	if err := s.getJSON(ctx, credentialsKey(playerID), &creds, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (s *Storage) GetCredentialsByUsername(ctx context.Context, username string) (*model.Credentials, error) {
	playerID, err := s.getString(ctx, usernameIndexKey(username), model.ErrPlayerNotFound)
	if err != nil {
		return nil, err
	}
	return s.GetCredentials(ctx, model.PlayerID(playerID))
}

// Game snapshot operations

func (s *Storage) SaveGame(ctx context.Context, snapshot *model.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, gameKey(snapshot.GameID), data, s.cfg.GameTTL)
	pipe.SAdd(ctx, gamesIndexKey(), string(snapshot.GameID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Snapshot, error) {
	var snapshot model.Snapshot
	if err := s.getJSON(ctx, gameKey(id), &snapshot, model.ErrGameNotFound); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, gameKey(id))
	pipe.SRem(ctx, gamesIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Snapshot, error) {
	ids, err := s.client.SMembers(ctx, gamesIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Snapshot{}, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(model.GameID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	snapshots := make([]*model.Snapshot, 0, len(values))
	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			// Expired snapshot; drop it from the index
			s.client.SRem(ctx, gamesIndexKey(), ids[i])
			continue
		}
		var snapshot model.Snapshot
		if err := json.Unmarshal([]byte(str), &snapshot); err != nil {
			continue
		}
		snapshots = append(snapshots, &snapshot)
	}
	return snapshots, nil
}

// Registry operations

func (s *Storage) BindChat(ctx context.Context, chat model.ChatKey, id model.GameID) error {
	return s.client.Set(ctx, chatIndexKey(chat), string(id), s.cfg.GameTTL).Err()
}

func (s *Storage) GameForChat(ctx context.Context, chat model.ChatKey) (model.GameID, error) {
	id, err := s.getString(ctx, chatIndexKey(chat), model.ErrGameNotFound)
	return model.GameID(id), err
}

func (s *Storage) UnbindChat(ctx context.Context, chat model.ChatKey) error {
	return s.client.Del(ctx, chatIndexKey(chat)).Err()
}

func (s *Storage) BindJoinCode(ctx context.Context, code string, id model.GameID) error {
	return s.client.Set(ctx, joinCodeIndexKey(code), string(id), s.cfg.GameTTL).Err()
}

func (s *Storage) GameForJoinCode(ctx context.Context, code string) (model.GameID, error) {
	id, err := s.getString(ctx, joinCodeIndexKey(code), model.ErrJoinCodeNotFound)
	return model.GameID(id), err
}

func (s *Storage) UnbindJoinCode(ctx context.Context, code string) error {
	return s.client.Del(ctx, joinCodeIndexKey(code)).Err()
}

// Dictionary operations

func (s *Storage) GetDictionaryWords(ctx context.Context) ([]string, error) {
	key := dictionaryKey()

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.ErrDictionaryNotLoaded
	}

	return s.client.SMembers(ctx, key).Result()
}

func (s *Storage) SaveDictionaryWords(ctx context.Context, words []string) error {
	key := dictionaryKey()

	// Replace the existing dictionary atomically
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(words) > 0 {
		members := make([]interface{}, len(words))
		for i, w := range words {
			members[i] = w
		}
		pipe.SAdd(ctx, key, members...)
	}
	_, err := pipe.Exec(ctx)
	return err
}
