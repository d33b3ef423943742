package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a token bucket shared by all callers of the ingest endpoint.
// It refills at perMinute/60 tokens per whole elapsed second and holds at
// most burst tokens.
type Limiter struct {
	mu         sync.Mutex
	tokens     int
	lastRefill time.Time
	perMinute  int
	burst      int

	now func() time.Time
}

// New creates a Limiter starting with a full bucket.
func New(perMinute, burst int) *Limiter {
	l := &Limiter{
		tokens:    burst,
		perMinute: perMinute,
		burst:     burst,
		now:       time.Now,
	}
	l.lastRefill = l.now()
	return l
}

// PerMinute returns the configured sustained rate.
func (l *Limiter) PerMinute() int { return l.perMinute }

// Allow consumes one token if available and reports whether the request
// may proceed. Refill only advances on whole elapsed seconds, so the
// clock anchor is moved exactly when tokens are credited.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if secs := int64(now.Sub(l.lastRefill) / time.Second); secs > 0 {
		l.tokens += int(int64(l.perMinute) * secs / 60)
		if l.tokens > l.burst {
			l.tokens = l.burst
		}
		l.lastRefill = now
	}

	if l.tokens > 0 {
		l.tokens--
		return true
	}
	return false
}
