package api

import (
	"sync"
	"time"

	"github.com/heys-app/metabolic-engine/internal/domain"
)

// RateLimiter enforces a per-client sliding window limit on status
// computations. The window is 60 seconds.
type RateLimiter struct {
	perMinute int

	mu      sync.Mutex
	buckets map[string]*rateBucket
}

type rateBucket struct {
	count       int
	windowStart int64
}

// NewRateLimiter creates a limiter. A non-positive limit disables it.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		perMinute: perMinute,
		buckets:   make(map[string]*rateBucket),
	}
}

// Allow records one request for the client. If the count within the current
// window exceeds the configured limit, ErrRateLimitExceeded is returned.
func (l *RateLimiter) Allow(clientID string) error {
	if l.perMinute <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().Unix()
	bucket, ok := l.buckets[clientID]
	if !ok {
		l.buckets[clientID] = &rateBucket{count: 1, windowStart: now}
		return nil
	}

	if now-bucket.windowStart > 60 {
		bucket.count = 1
		bucket.windowStart = now
		return nil
	}

	if bucket.count >= l.perMinute {
		return domain.ErrRateLimitExceeded
	}

	bucket.count++
	return nil
}
