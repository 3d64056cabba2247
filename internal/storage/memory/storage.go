package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/baldagame/internal/model"
	"github.com/mcoot/baldagame/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	profiles        map[model.PlayerID]*model.Profile
	credentials     map[model.PlayerID]*model.Credentials
	usernameIndex   map[string]model.PlayerID
	games           map[model.GameID]*model.Snapshot
	chatIndex       map[model.ChatKey]model.GameID
	joinCodeIndex   map[string]model.GameID
	dictionaryWords []string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		profiles:      make(map[model.PlayerID]*model.Profile),
		credentials:   make(map[model.PlayerID]*model.Credentials),
		usernameIndex: make(map[string]model.PlayerID),
		games:         make(map[model.GameID]*model.Snapshot),
		chatIndex:     make(map[model.ChatKey]model.GameID),
		joinCodeIndex: make(map[string]model.GameID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Profile operations

func (s *Storage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *profile
	s.profiles[profile.ID] = &p
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, id model.PlayerID) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *profile
	return &p, nil
}

func (s *Storage) DeleteProfile(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, id)
	return nil
}

// Credentials operations

func (s *Storage) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *creds
	s.credentials[creds.PlayerID] = &c
	s.usernameIndex[creds.Username] = creds.PlayerID
	return nil
}

func (s *Storage) GetCredentials(ctx context.Context, playerID model.PlayerID) (*model.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds, ok := s.credentials[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	c := *creds
	return &c, nil
}

func (s *Storage) GetCredentialsByUsername(ctx context.Context, username string) (*model.Credentials, error) {
	s.mu.RLock()
	playerID, ok := s.usernameIndex[username]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return s.GetCredentials(ctx, playerID)
}

// Game snapshot operations

func (s *Storage) SaveGame(ctx context.Context, snapshot *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[snapshot.GameID] = snapshot.Clone()
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return snapshot.Clone(), nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
	return nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshots := make([]*model.Snapshot, 0, len(s.games))
	for _, snapshot := range s.games {
		snapshots = append(snapshots, snapshot.Clone())
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].GameID < snapshots[j].GameID
	})
	return snapshots, nil
}

// Registry operations

func (s *Storage) BindChat(ctx context.Context, chat model.ChatKey, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatIndex[chat] = id
	return nil
}

func (s *Storage) GameForChat(ctx context.Context, chat model.ChatKey) (model.GameID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.chatIndex[chat]
	if !ok {
		return "", model.ErrGameNotFound
	}
	return id, nil
}

func (s *Storage) UnbindChat(ctx context.Context, chat model.ChatKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chatIndex, chat)
	return nil
}

func (s *Storage) BindJoinCode(ctx context.Context, code string, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joinCodeIndex[code] = id
	return nil
}

func (s *Storage) GameForJoinCode(ctx context.Context, code string) (model.GameID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.joinCodeIndex[code]
	if !ok {
		return "", model.ErrJoinCodeNotFound
	}
	return id, nil
}

func (s *Storage) UnbindJoinCode(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.joinCodeIndex, code)
	return nil
}

// Dictionary operations

func (s *Storage) GetDictionaryWords(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dictionaryWords == nil {
		return nil, model.ErrDictionaryNotLoaded
	}
	result := make([]string, len(s.dictionaryWords))
	copy(result, s.dictionaryWords)
	return result, nil
}

func (s *Storage) SaveDictionaryWords(ctx context.Context, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dictionaryWords = make([]string, len(words))
	copy(s.dictionaryWords, words)
	return nil
}
