package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiter enforces a per-client request quota. Each client address
// gets its own token bucket, created lazily and sized so a full window's
// quota can be spent in a burst.
type clientLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newClientLimiter(quota int, window time.Duration) *clientLimiter {
	if quota <= 0 {
		quota = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(window / time.Duration(quota)),
		burst:    quota,
	}
}

// allow reports whether the client may issue a request right now.
func (l *clientLimiter) allow(client string) bool {
	return l.get(client).Allow()
}

func (l *clientLimiter) get(client string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[client]
	l.mu.RUnlock()
	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, exists := l.limiters[client]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(l.limit, l.burst)
	l.limiters[client] = limiter
	return limiter
}
