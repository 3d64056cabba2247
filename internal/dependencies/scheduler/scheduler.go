package scheduler

import "time"

// CancelFunc stops a scheduled callback. It reports whether the callback was
// prevented from running; a callback already in flight is not interrupted.
type CancelFunc func() bool

// Scheduler runs callbacks after a delay
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) CancelFunc
}

// TimeScheduler implements Scheduler with runtime timers
type TimeScheduler struct{}

// New creates a new TimeScheduler
func New() *TimeScheduler {
	return &TimeScheduler{}
}

// AfterFunc runs fn on its own goroutine once d has elapsed
func (s *TimeScheduler) AfterFunc(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return t.Stop
}
