package factory

import (
	"time"

	"github.com/mcoot/baldagame/internal/dependencies/mocks"
	"github.com/mcoot/baldagame/internal/storage"
	"github.com/mcoot/baldagame/internal/storage/memory"
	"github.com/mcoot/baldagame/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	MockClock     *mocks.MockClock
	MockRandom    *mocks.MockRandom
	MockScheduler *mocks.MockScheduler
}

// NewTestApp creates an App on memory storage with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage is NewTestApp on the given storage
func NewTestAppWithStorage(store storage.Storage) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockScheduler := mocks.NewMockScheduler()

	app := newWithDependencies(store, mockClock, mockRandom, mockScheduler, withDefaults(Config{}), testutil.NopLogger())

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		MockScheduler: mockScheduler,
	}
}

// Advance moves the clock and fires timers that became due
func (t *TestApp) Advance(d time.Duration) {
	t.MockClock.Advance(d)
	t.MockScheduler.Advance(d)
}

// LoadTestDictionary loads a small set of nouns for testing
func (t *TestApp) LoadTestDictionary() error {
	return t.DictionaryService.LoadWords([]string{
		"кот", "кран", "урок", "икра", "краб", "рак", "сок", "кит",
		"ком", "око", "кость", "мост", "кора", "роса", "сокол",
	})
}
