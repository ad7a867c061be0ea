package mutes

import (
	"context"
	"sync"
	"testing"
	"time"

	"sweeper/internal/modules/audit"
	"sweeper/internal/storage"
	"sweeper/internal/timers"

	"go.uber.org/zap"
)

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []struct {
		ch       chan time.Time
		deadline time.Time
	}
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
	c.waiters = append(c.waiters, struct {
		ch       chan time.Time
		deadline time.Time
	}{ch, c.now.Add(d)})
	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	remaining := c.waiters[:0]
	for _, w := range c.waiters {
		if !w.deadline.After(c.now) {
			w.ch <- c.now
		} else {
			remaining = append(remaining, w)
		}
	}
	c.waiters = remaining
	c.mu.Unlock()
}

type fakePlatform struct {
	mu       sync.Mutex
	roles    map[string][]string // "guild:user" -> current removable roles
	dmFails  bool
	dms      []string
	channels []string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{roles: make(map[string][]string)}
}

func (p *fakePlatform) SnapshotRoles(_ context.Context, guildID, userID string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.roles[guildID+":"+userID]...), nil
}

func (p *fakePlatform) SetRoles(_ context.Context, guildID, userID string, roles []string, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roles[guildID+":"+userID] = append([]string(nil), roles...)
	return nil
}

func (p *fakePlatform) DirectMessage(_ context.Context, userID, content string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dmFails {
		return context.DeadlineExceeded
	}
	p.dms = append(p.dms, content)
	return nil
}

func (p *fakePlatform) ChannelMessage(_ context.Context, channelID, content string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, content)
	return nil
}

func (p *fakePlatform) currentRoles(guildID, userID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.roles[guildID+":"+userID]...)
}

func newTestManager(t *testing.T, clock *fakeClock, platform *fakePlatform) (*Manager, *storage.Store) {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sched := timers.NewScheduler(time.Hour, zap.NewNop())
	sched.WithClock(clock)

	settings := func(ctx context.Context, guildID string) (storage.GuildSettings, error) {
		return storage.GuildSettings{GuildID: guildID, MutedRole: "muted", ModChannel: "mod"}, nil
	}
	auditLogger := audit.NewLogger(store, zap.NewNop())
	return NewManager(store, sched, platform, settings, auditLogger, zap.NewNop(), true), store
}

func waitRoles(t *testing.T, platform *fakePlatform, guildID, userID string, want []string) {
	t.Helper()
	for i := 0; i < 200; i++ {
		got := platform.currentRoles(guildID, userID)
		if len(got) == len(want) {
			match := true
			for j := range got {
				if got[j] != want[j] {
					match = false
					break
				}
			}
			if match {
				return
			}
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("roles never became %v, have %v", want, platform.currentRoles(guildID, userID))
}

func TestMuteAndTimedUnmute(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	platform := newFakePlatform()
	platform.roles["g1:u1"] = []string{"member", "artist"}
	manager, store := newTestManager(t, clock, platform)
	ctx := context.Background()

	if err := manager.Mute(ctx, "g1", "u1", "mod1", "spam", clock.Now().Add(20*time.Minute)); err != nil {
		t.Fatalf("mute: %v", err)
	}
	if got := platform.currentRoles("g1", "u1"); len(got) != 1 || got[0] != "muted" {
		t.Fatalf("expected muted role only, got %v", got)
	}
	if len(platform.dms) != 1 {
		t.Fatalf("expected mute DM, got %v", platform.dms)
	}

	clock.Advance(21 * time.Minute)
	waitRoles(t, platform, "g1", "u1", []string{"member", "artist"})

	if _, ok, _ := store.GetMute(ctx, "g1", "u1"); ok {
		t.Fatalf("expected mute row removed after timed unmute")
	}
}

func TestStackedMuteKeepsOriginalRoles(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	platform := newFakePlatform()
	platform.roles["g1:u1"] = []string{"member"}
	manager, store := newTestManager(t, clock, platform)
	ctx := context.Background()

	if err := manager.Mute(ctx, "g1", "u1", "mod1", "spam", clock.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("first mute: %v", err)
	}
	// Member now holds only the muted role; a second mute must not
	// snapshot that as the restore set.
	if err := manager.Mute(ctx, "g1", "u1", "mod2", "more spam", clock.Now().Add(30*time.Minute)); err != nil {
		t.Fatalf("second mute: %v", err)
	}

	mute, ok, err := store.GetMute(ctx, "g1", "u1")
	if err != nil || !ok {
		t.Fatalf("get mute: ok=%t err=%v", ok, err)
	}
	if len(mute.OldRoles) != 1 || mute.OldRoles[0] != "member" {
		t.Fatalf("expected original snapshot carried forward, got %v", mute.OldRoles)
	}

	// The first timer was cancelled; at 10 minutes nothing fires.
	clock.Advance(11 * time.Minute)
	time.Sleep(20 * time.Millisecond)
	if got := platform.currentRoles("g1", "u1"); len(got) != 1 || got[0] != "muted" {
		t.Fatalf("superseded timer unmuted early: %v", got)
	}

	clock.Advance(20 * time.Minute)
	waitRoles(t, platform, "g1", "u1", []string{"member"})
}

func TestManualUnmute(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	platform := newFakePlatform()
	platform.roles["g1:u1"] = []string{"member"}
	manager, store := newTestManager(t, clock, platform)
	ctx := context.Background()

	if err := manager.Mute(ctx, "g1", "u1", "mod1", "spam", clock.Now().Add(time.Hour)); err != nil {
		t.Fatalf("mute: %v", err)
	}
	if err := manager.Unmute(ctx, "g1", "u1", "mod1"); err != nil {
		t.Fatalf("unmute: %v", err)
	}
	if got := platform.currentRoles("g1", "u1"); len(got) != 1 || got[0] != "member" {
		t.Fatalf("expected roles restored, got %v", got)
	}
	if _, ok, _ := store.GetMute(ctx, "g1", "u1"); ok {
		t.Fatalf("expected mute row removed")
	}
	// Unmuting again is a no-op.
	if err := manager.Unmute(ctx, "g1", "u1", "mod1"); err != nil {
		t.Fatalf("second unmute: %v", err)
	}
}

func TestReloadFiresExpiredRows(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	platform := newFakePlatform()
	platform.roles["g1:u1"] = []string{"muted"}
	manager, store := newTestManager(t, clock, platform)
	ctx := context.Background()

	// A row whose expiry passed while the process was down.
	if _, err := store.UpsertMute(ctx, storage.Mute{
		GuildID:   "g1",
		UserID:    "u1",
		Reason:    "spam",
		OldRoles:  []string{"member"},
		ExpiresAt: clock.Now().Add(-time.Hour),
	}); err != nil {
		t.Fatalf("seed mute: %v", err)
	}

	if err := manager.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	waitRoles(t, platform, "g1", "u1", []string{"member"})
}

func TestMuteDMFallsBackToModChannel(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	platform := newFakePlatform()
	platform.dmFails = true
	manager, _ := newTestManager(t, clock, platform)

	if err := manager.Mute(context.Background(), "g1", "u1", "mod1", "spam", clock.Now().Add(time.Hour)); err != nil {
		t.Fatalf("mute: %v", err)
	}
	if len(platform.channels) != 1 {
		t.Fatalf("expected mod channel fallback, got %v", platform.channels)
	}
}
