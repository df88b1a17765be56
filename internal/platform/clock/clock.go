package clock

import (
	"sync"
	"time"
)

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

// Timer is a scheduled callback that can be stopped before it fires.
type Timer interface {
	Stop() bool
}

// Scheduler runs deferred callbacks. Implementations never run two
// callbacks at the same time.
type Scheduler interface {
	Clock
	AfterFunc(d time.Duration, fn func()) Timer
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// SystemScheduler fires callbacks on real timers, one at a time.
type SystemScheduler struct {
	SystemClock

	run     sync.Mutex
	pending sync.WaitGroup
}

func NewSystemScheduler() *SystemScheduler {
	return &SystemScheduler{}
}

func (s *SystemScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &systemTimer{owner: s}
	s.pending.Add(1)
	t.timer = time.AfterFunc(d, func() {
		defer s.pending.Done()
		s.run.Lock()
		defer s.run.Unlock()
		fn()
	})
	return t
}

// Wait blocks until every scheduled callback has either fired or been
// stopped, including callbacks scheduled by other callbacks.
func (s *SystemScheduler) Wait() {
	s.pending.Wait()
}

type systemTimer struct {
	owner *SystemScheduler
	timer *time.Timer
}

func (t *systemTimer) Stop() bool {
	if t.timer.Stop() {
		t.owner.pending.Done()
		return true
	}
	return false
}
