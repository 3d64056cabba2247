package mocks

import (
	"sort"
	"sync"
	"time"

	"github.com/mcoot/baldagame/internal/dependencies/scheduler"
)

// MockScheduler is a manual Scheduler for testing. Callbacks run synchronously
// from Advance, in due order, on the caller's goroutine.
type MockScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*scheduledTask
}

type scheduledTask struct {
	due       time.Duration
	seq       int
	fn        func()
	cancelled bool
	fired     bool
}

// Ensure MockScheduler implements Scheduler
var _ scheduler.Scheduler = (*MockScheduler)(nil)

// NewMockScheduler creates an empty MockScheduler
func NewMockScheduler() *MockScheduler {
	return &MockScheduler{}
}

// AfterFunc records fn to run once Advance moves past d
func (s *MockScheduler) AfterFunc(d time.Duration, fn func()) scheduler.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	task := &scheduledTask{due: s.now + d, seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, task)

	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if task.fired || task.cancelled {
			return false
		}
		task.cancelled = true
		return true
	}
}

// Advance moves scheduler time forward and runs every callback that became due
func (s *MockScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		task := s.nextDue(target)
		if task == nil {
			break
		}
		task.fn()
	}

	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
}

// FireAll runs every pending callback, including cancelled ones, ignoring
// due times. It simulates timers that fire after being superseded.
func (s *MockScheduler) FireAll() {
	s.mu.Lock()
	tasks := make([]*scheduledTask, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.fired {
			t.fired = true
			tasks = append(tasks, t)
		}
	}
	s.mu.Unlock()

	for _, t := range tasks {
		t.fn()
	}
}

// Pending returns the number of callbacks neither fired nor cancelled
func (s *MockScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.fired && !t.cancelled {
			n++
		}
	}
	return n
}

func (s *MockScheduler) nextDue(target time.Duration) *scheduledTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].due != s.tasks[j].due {
			return s.tasks[i].due < s.tasks[j].due
		}
		return s.tasks[i].seq < s.tasks[j].seq
	})
	for _, t := range s.tasks {
		if t.fired || t.cancelled || t.due > target {
			continue
		}
		t.fired = true
		s.now = t.due
		return t
	}
	return nil
}
