package turntimer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/baldagame/internal/dependencies/mocks"
)

type firing struct {
	kind Kind
	b    Binding
}

type TimersSuite struct {
	suite.Suite
	sched  *mocks.MockScheduler
	timers *Timers
	fired  []firing
}

func TestTimersSuite(t *testing.T) {
	suite.Run(t, new(TimersSuite))
}

func (s *TimersSuite) SetupTest() {
	s.sched = mocks.NewMockScheduler()
	s.fired = nil
	s.timers = New("game-1", s.sched, DefaultConfig(), func(kind Kind, b Binding) {
		s.fired = append(s.fired, firing{kind, b})
	})
}

func (s *TimersSuite) TestScheduleFiresReminderThenTimeout() {
	b := s.timers.Schedule("alice")

	s.sched.Advance(44 * time.Second)
	s.Empty(s.fired)

	s.sched.Advance(time.Second)
	s.Require().Len(s.fired, 1)
	s.Equal(KindReminder, s.fired[0].kind)
	s.True(s.timers.IsCurrent(s.fired[0].b))

	s.sched.Advance(15 * time.Second)
	s.Require().Len(s.fired, 2)
	s.Equal(KindTimeout, s.fired[1].kind)
	s.Equal(b, s.fired[1].b)
}

func (s *TimersSuite) TestRescheduleCancelsPreviousPair() {
	first := s.timers.Schedule("alice")
	s.sched.Advance(30 * time.Second)

	second := s.timers.Schedule("alice")
	s.False(s.timers.IsCurrent(first))
	s.True(s.timers.IsCurrent(second))
	s.Equal(2, s.sched.Pending())

	// Old deadline passes without firing
	s.sched.Advance(30 * time.Second)
	s.Empty(s.fired)

	s.sched.Advance(30 * time.Second)
	s.Len(s.fired, 2)
}

func (s *TimersSuite) TestCancelWithoutScheduleIsNoop() {
	s.NotPanics(func() { s.timers.Cancel() })
	s.False(s.timers.Pending())
}

func (s *TimersSuite) TestCancelledBindingIsStaleEvenIfFired() {
	s.timers.Schedule("alice")
	s.timers.Cancel()

	// Simulate callbacks racing the cancellation
	s.sched.FireAll()
	s.Require().Len(s.fired, 2)
	for _, f := range s.fired {
		s.False(s.timers.IsCurrent(f.b))
	}
}

func (s *TimersSuite) TestBindingForOtherPlayerIsStale() {
	s.timers.Schedule("alice")
	s.sched.FireAll()
	s.timers.Schedule("bob")

	for _, f := range s.fired {
		s.Equal("alice", string(f.b.PlayerID))
		s.False(s.timers.IsCurrent(f.b))
	}
}

func (s *TimersSuite) TestNoReminderWhenDisabled() {
	timers := New("game-2", s.sched, Config{Timeout: time.Minute}, func(kind Kind, b Binding) {
		s.fired = append(s.fired, firing{kind, b})
	})
	timers.Schedule("alice")

	s.sched.Advance(time.Minute)
	s.Require().Len(s.fired, 1)
	s.Equal(KindTimeout, s.fired[0].kind)
}
