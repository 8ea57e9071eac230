package status

import (
	"sync"
	"time"

	"github.com/heys-app/metabolic-engine/internal/domain"
)

// DefaultTTL is how long a computed status stays fresh.
const DefaultTTL = 2 * time.Minute

// Cache memoizes the last status per client identity and carries the
// smoothing/hysteresis trajectory across calls. Entries never leave process
// memory. Concurrent writes for the same client are last-write-wins; the
// smoothing logic tolerates redundant recomputation.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	status   *domain.StatusResult
	date     domain.DateKey
	at       time.Time
	smoothed float64
	seeded   bool
	level    domain.RiskLevel
}

// NewCache creates a cache with the given TTL, defaulting to DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{ttl: ttl, entries: make(map[string]*cacheEntry)}
}

// Get returns the cached status when it is fresh and matches the requested
// date. A stale entry is left in place; its trajectory is still valid.
func (c *Cache) Get(clientID string, date domain.DateKey, now time.Time) (*domain.StatusResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[clientID]
	if !ok || e.date != date {
		return nil, false
	}
	if now.Sub(e.at) > c.ttl {
		return nil, false
	}
	return e.status, true
}

// Trajectory returns the previous smoothed score (nil when none) and the
// previous risk level for a client.
func (c *Cache) Trajectory(clientID string) (*float64, domain.RiskLevel) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[clientID]
	if !ok {
		return nil, ""
	}
	if !e.seeded {
		return nil, e.level
	}
	s := e.smoothed
	return &s, e.level
}

// Put overwrites the client's entry after a successful computation.
func (c *Cache) Put(clientID string, date domain.DateKey, status *domain.StatusResult, smoothed float64, level domain.RiskLevel, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[clientID] = &cacheEntry{
		status:   status,
		date:     date,
		at:       now,
		smoothed: smoothed,
		seeded:   true,
		level:    level,
	}
}
