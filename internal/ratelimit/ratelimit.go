// Package ratelimit bounds outbound request frequency per logical key using
// a sliding time window.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Defaults for alert fetches.
const (
	DefaultMaxRequests = 50
	DefaultWindow      = time.Minute
)

// Limiter tracks request timestamps per key and denies requests once a key
// has used its budget within the window.
type Limiter struct {
	maxRequests int
	window      time.Duration
	clock       clockwork.Clock

	mu       sync.Mutex
	requests map[string][]time.Time
}

// New creates a Limiter. A nil clock uses real time.
func New(maxRequests int, window time.Duration, clock clockwork.Clock) *Limiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		clock:       clock,
		requests:    make(map[string][]time.Time),
	}
}

// Allow reports whether a request under key may proceed, recording the
// request time when it does. Timestamps older than the window are discarded.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	valid := l.prune(key, now)

	if len(valid) >= l.maxRequests {
		l.requests[key] = valid
		return false
	}

	l.requests[key] = append(valid, now)
	return true
}

// Remaining reports how many requests key may still make in the current
// window without recording anything.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	valid := l.prune(key, l.clock.Now())
	l.requests[key] = valid

	if rem := l.maxRequests - len(valid); rem > 0 {
		return rem
	}
	return 0
}

// prune returns the timestamps for key still inside the window ending at now.
// Callers hold l.mu.
func (l *Limiter) prune(key string, now time.Time) []time.Time {
	recorded := l.requests[key]
	valid := recorded[:0]
	for _, t := range recorded {
		if now.Sub(t) < l.window {
			valid = append(valid, t)
		}
	}
	return valid
}

// Key builds a limiter key scoped to an operation and a coordinate pair, so
// polling distinct locations does not share a budget.
func Key(operation string, lat, lon float64) string {
	return fmt.Sprintf("%s:%.4f,%.4f", operation, lat, lon)
}
