package turntimer

import (
	"time"

	"github.com/mcoot/baldagame/internal/dependencies/scheduler"
	"github.com/mcoot/baldagame/internal/model"
)

// Config holds turn timing settings
type Config struct {
	// Timeout is the full budget of one turn
	Timeout time.Duration
	// ReminderBefore is how long before the deadline the reminder fires
	ReminderBefore time.Duration
}

// DefaultConfig returns the standard 60 second turn with a reminder 15 seconds before the end
func DefaultConfig() Config {
	return Config{
		Timeout:        60 * time.Second,
		ReminderBefore: 15 * time.Second,
	}
}

// Kind distinguishes the two timers of a turn
type Kind string

const (
	KindReminder Kind = "reminder"
	KindTimeout  Kind = "timeout"
)

// Binding identifies the turn a timer was scheduled for
type Binding struct {
	GameID     model.GameID
	PlayerID   model.PlayerID
	Generation uint64
}

// FireFunc receives timer firings. It runs on the scheduler's goroutine and
// must take the game lock and call IsCurrent before acting.
type FireFunc func(kind Kind, b Binding)

// Timers owns the single reminder and timeout pair of one game.
// Methods are not goroutine-safe; callers hold the game lock.
type Timers struct {
	gameID model.GameID
	sched  scheduler.Scheduler
	cfg    Config
	fire   FireFunc

	generation     uint64
	bound          model.PlayerID
	cancelReminder scheduler.CancelFunc
	cancelTimeout  scheduler.CancelFunc
}

// New creates the timer pair holder for a game
func New(gameID model.GameID, sched scheduler.Scheduler, cfg Config, fire FireFunc) *Timers {
	return &Timers{
		gameID: gameID,
		sched:  sched,
		cfg:    cfg,
		fire:   fire,
	}
}

// Schedule cancels any existing pair and starts a fresh one for the player
func (t *Timers) Schedule(player model.PlayerID) Binding {
	t.Cancel()

	t.bound = player
	b := Binding{GameID: t.gameID, PlayerID: player, Generation: t.generation}

	if remind := t.cfg.Timeout - t.cfg.ReminderBefore; t.cfg.ReminderBefore > 0 && remind > 0 {
		t.cancelReminder = t.sched.AfterFunc(remind, func() { t.fire(KindReminder, b) })
	}
	t.cancelTimeout = t.sched.AfterFunc(t.cfg.Timeout, func() { t.fire(KindTimeout, b) })
	return b
}

// Cancel stops both timers if present. Safe to call when none are scheduled.
func (t *Timers) Cancel() {
	// Bumping the generation makes callbacks already in flight stale
	t.generation++
	t.bound = ""
	if t.cancelReminder != nil {
		t.cancelReminder()
		t.cancelReminder = nil
	}
	if t.cancelTimeout != nil {
		t.cancelTimeout()
		t.cancelTimeout = nil
	}
}

// IsCurrent reports whether a binding belongs to the live timer pair
func (t *Timers) IsCurrent(b Binding) bool {
	return b.GameID == t.gameID && b.Generation == t.generation && t.bound != "" && b.PlayerID == t.bound
}

// Pending reports whether a timer pair is scheduled
func (t *Timers) Pending() bool {
	return t.bound != ""
}

// Timeout returns the configured turn budget
func (t *Timers) Timeout() time.Duration {
	return t.cfg.Timeout
}
