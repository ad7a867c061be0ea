// Package timers runs deferred one-shot actions (unmutes, reminders) that
// survive restarts: callers persist expiry rows and rebuild timers from them
// at startup.
package timers

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

const (
	stateScheduled int32 = iota
	stateFired
	stateCancelled
)

// Timer is a one-shot deferred action. Scheduled -> Fired or
// Scheduled -> Cancelled; both end states are terminal and a finished timer
// is never reused.
type Timer struct {
	Key       string
	CreatedAt time.Time
	ExpiresAt time.Time

	fire    func()
	clock   Clock
	maxWait time.Duration
	state   atomic.Int32
	done    chan struct{}
}

func newTimer(key string, createdAt, expiresAt time.Time, fire func(), clock Clock, maxWait time.Duration) *Timer {
	return &Timer{
		Key:       key,
		CreatedAt: createdAt.UTC(),
		ExpiresAt: expiresAt.UTC(),
		fire:      fire,
		clock:     clock,
		maxWait:   maxWait,
		done:      make(chan struct{}),
	}
}

// Start fires synchronously when the expiry is already in the past (catch-up
// for rows reloaded after downtime), otherwise arms the wait loop.
func (t *Timer) Start() {
	if !t.ExpiresAt.After(t.clock.Now()) {
		t.tryFire()
		return
	}
	go t.run()
}

// run sleeps min(remaining, maxWait) and recomputes on each wake rather than
// arming a single long wait; maxWait mirrors the bounded single-wait of the
// original runtime and keeps very long mutes honest across clock adjustments.
func (t *Timer) run() {
	for {
		remaining := t.ExpiresAt.Sub(t.clock.Now())
		if remaining <= 0 {
			t.tryFire()
			return
		}
		wait := remaining
		if t.maxWait > 0 && wait > t.maxWait {
			wait = t.maxWait
		}
		select {
		case <-t.clock.After(wait):
		case <-t.done:
			return
		}
	}
}

// tryFire guards the callback with a single state transition so a cancel
// racing an in-flight wake can never let the side effects run.
func (t *Timer) tryFire() {
	if t.state.CompareAndSwap(stateScheduled, stateFired) {
		t.fire()
	}
}

// Stop cancels the timer. Calling it on an already fired or cancelled timer
// is a no-op; it reports whether this call performed the cancellation.
func (t *Timer) Stop() bool {
	if t.state.CompareAndSwap(stateScheduled, stateCancelled) {
		close(t.done)
		return true
	}
	return false
}

func (t *Timer) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// Scheduler tracks live timers by owner key. At most one live timer exists
// per key; scheduling over an existing key cancels the previous timer first.
type Scheduler struct {
	mu      sync.Mutex
	clock   Clock
	maxWait time.Duration
	logger  *zap.Logger
	timers  map[string]*Timer
}

func NewScheduler(maxWait time.Duration, logger *zap.Logger) *Scheduler {
	if maxWait <= 0 {
		maxWait = 24 * time.Hour
	}
	return &Scheduler{
		clock:   realClock{},
		maxWait: maxWait,
		logger:  logger,
		timers:  make(map[string]*Timer),
	}
}

func (s *Scheduler) WithClock(clock Clock) {
	s.clock = clock
}

func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Schedule registers and starts a timer for key. The callback runs at most
// once; the scheduler forgets the key before invoking it so the callback may
// schedule a replacement.
func (s *Scheduler) Schedule(key string, createdAt, expiresAt time.Time, fire func()) *Timer {
	var timer *Timer
	timer = newTimer(key, createdAt, expiresAt, func() {
		s.forget(key, timer)
		fire()
	}, s.clock, s.maxWait)

	s.mu.Lock()
	if old := s.timers[key]; old != nil {
		if old.Stop() {
			s.logger.Debug("timer superseded", zap.String("key", key), zap.Time("old_expires", old.ExpiresAt))
		}
	}
	s.timers[key] = timer
	s.mu.Unlock()

	timer.Start()
	return timer
}

// Cancel stops and forgets the timer for key, reporting whether a live timer
// was cancelled. Safe to call for unknown or already fired keys.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	timer := s.timers[key]
	delete(s.timers, key)
	s.mu.Unlock()

	if timer == nil {
		return false
	}
	return timer.Stop()
}

func (s *Scheduler) Get(key string) (*Timer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer, ok := s.timers[key]
	return timer, ok
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// forget drops the key only if it still maps to this timer, so a firing
// timer never erases its own replacement.
func (s *Scheduler) forget(key string, timer *Timer) {
	s.mu.Lock()
	if s.timers[key] == timer {
		delete(s.timers, key)
	}
	s.mu.Unlock()
}
