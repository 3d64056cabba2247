package dictionary

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mcoot/baldagame/internal/model"
	"github.com/mcoot/baldagame/internal/storage"
)

// Alphabet is the target alphabet after normalization
const Alphabet = "абвгдежзийклмнопрстуфхцчшщъыьэюя"

// Normalize trims, lowercases and folds ё into е
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "ё", "е")
}

// IsLetter reports whether r belongs to the target alphabet
func IsLetter(r rune) bool {
	return r >= 'а' && r <= 'я'
}

// IsWord reports whether s is non-empty and made only of alphabet letters
func IsWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsLetter(r) {
			return false
		}
	}
	return true
}

// Service holds the immutable word set used for move validation
type Service struct {
	storage storage.Storage
	logger  *slog.Logger

	mu     sync.RWMutex
	words  map[string]struct{}
	loaded bool
}

// New creates a new DictionaryService
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		words:   make(map[string]struct{}),
	}
}

// LoadFromStorage loads dictionary words from storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	words, err := s.storage.GetDictionaryWords(ctx)
	if err != nil {
		return err
	}
	return s.loadWords(words)
}

// LoadFromFile loads dictionary words from a single file
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	words, err := readWordFile(path)
	if err != nil {
		return err
	}
	s.persist(ctx, words)
	return s.loadWords(words)
}

// LoadFromFiles merges several word lists. Unreadable files are skipped so
// the service always ends up loaded, possibly empty.
func (s *Service) LoadFromFiles(ctx context.Context, paths ...string) error {
	var words []string
	for _, path := range paths {
		fileWords, err := readWordFile(path)
		if err != nil {
			s.logger.Warn("dictionary source skipped",
				slog.String("path", path),
				slog.Any("error", err),
			)
			continue
		}
		words = append(words, fileWords...)
	}
	s.persist(ctx, words)
	return s.loadWords(words)
}

// LoadWords directly loads a slice of words (useful for testing)
func (s *Service) LoadWords(words []string) error {
	return s.loadWords(words)
}

func (s *Service) persist(ctx context.Context, words []string) {
	if len(words) == 0 {
		return
	}
	if err := s.storage.SaveDictionaryWords(ctx, words); err != nil {
		s.logger.Warn("failed to save dictionary words", slog.Any("error", err))
	}
}

func (s *Service) loadWords(words []string) error {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		if w := Normalize(word); w != "" {
			set[w] = struct{}{}
		}
	}

	s.mu.Lock()
	s.words = set
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("dictionary loaded", slog.Int("word_count", len(set)))
	return nil
}

// Contains reports whether the normalized word is in the dictionary
func (s *Service) Contains(word string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.words[Normalize(word)]
	return ok
}

// IsLoaded returns whether the dictionary has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// WordCount returns the number of words in the dictionary
func (s *Service) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

type jsonlEntry struct {
	Word string `json:"word"`
}

// readWordFile reads one word per line, or JSON Lines objects with a "word" field
func readWordFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "{") {
			var entry jsonlEntry
			if err := json.Unmarshal([]byte(line), &entry); err != nil || entry.Word == "" {
				continue
			}
			line = entry.Word
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, errors.New("no words in " + path)
	}
	return words, nil
}

// ServiceInterface is the dictionary contract used by the engine
type ServiceInterface interface {
	Contains(word string) bool
	IsLoaded() bool
	WordCount() int
	LoadFromStorage(ctx context.Context) error
	LoadFromFile(ctx context.Context, path string) error
	LoadFromFiles(ctx context.Context, paths ...string) error
	LoadWords(words []string) error
}

var _ ServiceInterface = (*Service)(nil)

// ErrDictionaryNotLoaded is returned when operations are attempted before loading
var ErrDictionaryNotLoaded = model.ErrDictionaryNotLoaded
