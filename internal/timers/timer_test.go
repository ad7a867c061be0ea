package timers

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeWaiter struct {
	ch       chan time.Time
	deadline time.Time
}

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []fakeWaiter
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	c.waiters = append(c.waiters, fakeWaiter{ch: ch, deadline: c.now.Add(d)})
	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var pending []fakeWaiter
	for _, w := range c.waiters {
		if !w.deadline.After(c.now) {
			w.ch <- c.now
		} else {
			pending = append(pending, w)
		}
	}
	c.waiters = pending
	c.mu.Unlock()
}

func (c *fakeClock) waiterCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

func waitForWaiters(t *testing.T, clock *fakeClock, n int) {
	t.Helper()
	for i := 0; i < 200; i++ {
		if clock.waiterCount() >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("no waiter registered")
}

func waitFired(t *testing.T, fired <-chan struct{}) {
	t.Helper()
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatalf("timer did not fire")
	}
}

func TestTimerCatchUpFiresImmediately(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	sched := NewScheduler(time.Hour, zap.NewNop())
	sched.WithClock(clock)

	fired := make(chan struct{}, 1)
	expired := clock.Now().Add(-time.Minute)
	sched.Schedule("mute:g1:u1", expired.Add(-time.Hour), expired, func() { fired <- struct{}{} })

	waitFired(t, fired)
	if sched.Len() != 0 {
		t.Fatalf("expected fired timer forgotten, have %d", sched.Len())
	}
}

func TestTimerReschedulesWithinMaxWait(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	sched := NewScheduler(time.Hour, zap.NewNop())
	sched.WithClock(clock)

	fired := make(chan struct{}, 1)
	sched.Schedule("mute:g1:u1", clock.Now(), clock.Now().Add(3*time.Hour), func() { fired <- struct{}{} })

	for i := 0; i < 2; i++ {
		waitForWaiters(t, clock, 1)
		clock.Advance(time.Hour)
		select {
		case <-fired:
			t.Fatalf("fired after %d hours", i+1)
		case <-time.After(20 * time.Millisecond):
		}
	}

	waitForWaiters(t, clock, 1)
	clock.Advance(time.Hour)
	waitFired(t, fired)
}

func TestTimerCancelBeforeFire(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	sched := NewScheduler(time.Hour, zap.NewNop())
	sched.WithClock(clock)

	var fired atomic.Int32
	sched.Schedule("mute:g1:u1", clock.Now(), clock.Now().Add(time.Minute), func() { fired.Add(1) })
	waitForWaiters(t, clock, 1)

	if !sched.Cancel("mute:g1:u1") {
		t.Fatalf("expected cancel to report a live timer")
	}
	if sched.Cancel("mute:g1:u1") {
		t.Fatalf("second cancel should be a no-op")
	}

	clock.Advance(2 * time.Minute)
	time.Sleep(20 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatalf("cancelled timer fired")
	}
}

func TestStopIsNoopAfterFire(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	sched := NewScheduler(time.Hour, zap.NewNop())
	sched.WithClock(clock)

	fired := make(chan struct{}, 1)
	timer := sched.Schedule("r:1", clock.Now(), clock.Now().Add(-time.Second), func() { fired <- struct{}{} })
	waitFired(t, fired)

	if timer.Stop() {
		t.Fatalf("stop after fire should be a no-op")
	}
}

func TestScheduleSupersedesSameKey(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	sched := NewScheduler(time.Hour, zap.NewNop())
	sched.WithClock(clock)

	var oldFired, newFired atomic.Int32
	sched.Schedule("mute:g1:u1", clock.Now(), clock.Now().Add(30*time.Minute), func() { oldFired.Add(1) })
	waitForWaiters(t, clock, 1)

	sched.Schedule("mute:g1:u1", clock.Now(), clock.Now().Add(45*time.Minute), func() { newFired.Add(1) })
	if sched.Len() != 1 {
		t.Fatalf("expected one live timer, have %d", sched.Len())
	}

	waitForWaiters(t, clock, 1)
	clock.Advance(time.Hour)
	for i := 0; i < 200 && newFired.Load() == 0; i++ {
		time.Sleep(time.Millisecond)
	}
	if oldFired.Load() != 0 {
		t.Fatalf("superseded timer fired")
	}
	if newFired.Load() != 1 {
		t.Fatalf("replacement fired %d times", newFired.Load())
	}
}
