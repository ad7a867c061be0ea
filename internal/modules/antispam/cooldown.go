package antispam

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// cooldownEntry remembers the parameters its limiter was built with so a
// changed guild override replaces the bucket instead of silently keeping the
// old rate.
type cooldownEntry struct {
	limiter *rate.Limiter
	rateN   int
	period  time.Duration
}

// Buckets are dropped after a day without activity. Cooldown periods run
// seconds to minutes, so the TTL must outlast any configured window; a
// bucket idle this long has refilled completely anyway.
const bucketIdleTTL = 24 * time.Hour

// CooldownSet tracks per-(guild,user) token buckets. Buckets are lazily
// created, capped by an LRU, and aged out after sitting idle; every Check
// re-inserts the entry, so a bucket with recent activity keeps its state
// for the full window. State is in-memory only; a restart resets all
// cooldowns.
type CooldownSet struct {
	mu      sync.Mutex
	buckets *lru.LRU[string, *cooldownEntry]
}

func NewCooldownSet(size int) *CooldownSet {
	if size <= 0 {
		size = 4096
	}
	return &CooldownSet{
		buckets: lru.NewLRU[string, *cooldownEntry](size, nil, bucketIdleTTL),
	}
}

// Check consumes one action from the (guildID, userID) bucket configured as
// rateN actions per period. When the bucket is over rate it consumes nothing
// and returns the positive wait until the next action would be admitted.
func (c *CooldownSet) Check(guildID, userID string, rateN int, period time.Duration) (time.Duration, bool) {
	if rateN <= 0 || period <= 0 {
		return 0, false
	}

	key := guildID + ":" + userID

	c.mu.Lock()
	entry, ok := c.buckets.Get(key)
	if !ok || entry.rateN != rateN || entry.period != period {
		entry = &cooldownEntry{
			limiter: rate.NewLimiter(rate.Every(period/time.Duration(rateN)), rateN),
			rateN:   rateN,
			period:  period,
		}
	}
	// Re-insert on every check; the TTL counts from insertion, so an active
	// bucket never expires mid-window.
	c.buckets.Add(key, entry)
	c.mu.Unlock()

	reservation := entry.limiter.Reserve()
	delay := reservation.Delay()
	if delay > 0 {
		reservation.Cancel()
		return delay, true
	}
	return 0, false
}

// Reset drops every bucket; used when cooldown settings are reloaded.
func (c *CooldownSet) Reset() {
	c.mu.Lock()
	c.buckets.Purge()
	c.mu.Unlock()
}
