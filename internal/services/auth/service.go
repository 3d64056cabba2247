// Package auth issues player identities for the HTTP surface: throwaway
// guests, and accounts with a username and bcrypt-hashed password.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/baldagame/internal/dependencies/clock"
	"github.com/mcoot/baldagame/internal/dependencies/random"
	"github.com/mcoot/baldagame/internal/model"
	"github.com/mcoot/baldagame/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrUsernameExists     = errors.New("username already exists")
)

// Config holds identity settings
type Config struct {
	// SessionDuration is how long a bearer token stays valid
	SessionDuration time.Duration
}

// DefaultConfig keeps tokens for a day
func DefaultConfig() Config {
	return Config{SessionDuration: 24 * time.Hour}
}

// Service signs players in and resolves bearer tokens to profiles
type Service struct {
	storage  storage.Storage
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
	sessions *sessionTable
}

func New(storage storage.Storage, clock clock.Clock, random random.Random, cfg Config, logger *slog.Logger) *Service {
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		storage:  storage,
		clock:    clock,
		random:   random,
		logger:   logger,
		sessions: newSessionTable(clock, cfg.SessionDuration),
	}
}

// newProfile validates the display name and builds an unsaved profile
func (s *Service) newProfile(displayName string, guest bool) (*model.Profile, error) {
	displayName = strings.TrimSpace(displayName)
	if !model.ValidName(displayName) {
		return nil, model.ErrInvalidName
	}
	return &model.Profile{
		ID:          model.PlayerID(s.random.ID()),
		DisplayName: displayName,
		IsGuest:     guest,
		CreatedAt:   s.clock.Now(),
	}, nil
}

// CreateGuest stores a guest profile and signs it in
func (s *Service) CreateGuest(ctx context.Context, displayName string) (*Session, error) {
	profile, err := s.newProfile(displayName, true)
	if err != nil {
		return nil, err
	}
	if err := s.storage.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.logger.Info("guest created", slog.String("player_id", string(profile.ID)))
	return s.sessions.issue(*profile), nil
}

// Register creates an account. Usernames compare case-insensitively.
func (s *Service) Register(ctx context.Context, username, password, displayName string) (*Session, error) {
	profile, err := s.newProfile(displayName, false)
	if err != nil {
		return nil, err
	}
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	switch _, err := s.storage.GetCredentialsByUsername(ctx, username); {
	case err == nil:
		return nil, ErrUsernameExists
	case !errors.Is(err, model.ErrPlayerNotFound):
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.storage.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	err = s.storage.SaveCredentials(ctx, &model.Credentials{
		PlayerID:     profile.ID,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    profile.CreatedAt,
		UpdatedAt:    profile.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}

	s.logger.Info("account registered",
		slog.String("player_id", string(profile.ID)),
		slog.String("username", username),
	)
	return s.sessions.issue(*profile), nil
}

// Login checks a password and signs the account in. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	creds, err := s.storage.GetCredentialsByUsername(ctx, normalizeUsername(username))
	if errors.Is(err, model.ErrPlayerNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.storage.GetProfile(ctx, creds.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return s.sessions.issue(*profile), nil
}

// ValidateSession resolves a bearer token
func (s *Service) ValidateSession(token string) (*Session, error) {
	sess, ok := s.sessions.find(token)
	if !ok {
		return nil, ErrInvalidSession
	}
	return sess, nil
}

// InvalidateSession signs a token out. Unknown tokens are ignored.
func (s *Service) InvalidateSession(token string) {
	s.sessions.revoke(token)
}

func (s *Service) GetProfile(token string) (*model.Profile, error) {
	sess, err := s.ValidateSession(token)
	if err != nil {
		return nil, err
	}
	return &sess.Profile, nil
}

// CleanExpiredSessions drops expired tokens and reports how many went
func (s *Service) CleanExpiredSessions() int {
	return s.sessions.sweep()
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ServiceInterface is what the HTTP layer depends on
type ServiceInterface interface {
	CreateGuest(ctx context.Context, displayName string) (*Session, error)
	Register(ctx context.Context, username, password, displayName string) (*Session, error)
	Login(ctx context.Context, username, password string) (*Session, error)
	ValidateSession(token string) (*Session, error)
	InvalidateSession(token string)
	GetProfile(token string) (*model.Profile, error)
}

var _ ServiceInterface = (*Service)(nil)
