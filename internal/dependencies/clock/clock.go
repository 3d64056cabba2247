package clock

import "time"

// Clock is the engine's source of time. Turn deadlines, session expiry and
// match durations are all read through it.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in UTC so stored timestamps compare
// equal across restarts
type RealClock struct{}

// New returns the system clock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current UTC time
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}
