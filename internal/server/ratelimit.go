package server

import (
	"sync"
	"time"
)

// Limiter is an in-memory per-key rate limiter counting requests per
// minute bucket. Entries older than the previous minute are dropped on
// each check to keep memory bounded.
type Limiter struct {
	mu        sync.Mutex
	perMinute int
	counts    map[string]map[int64]int
	now       func() time.Time
}

// NewLimiter creates a Limiter allowing perMinute requests per key.
func NewLimiter(perMinute int) *Limiter {
	return &Limiter{
		perMinute: perMinute,
		counts:    make(map[string]map[int64]int),
		now:       time.Now,
	}
}

// Allow records a request for key and reports whether it is within the
// limit, along with the count so far this minute and the limit.
func (l *Limiter) Allow(key string) (allowed bool, current, limit int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	minute := l.now().Unix() / 60

	buckets, ok := l.counts[key]
	if !ok {
		buckets = make(map[int64]int)
		l.counts[key] = buckets
	}
	for m := range buckets {
		if m < minute-1 {
			delete(buckets, m)
		}
	}

	current = buckets[minute]
	if current >= l.perMinute {
		return false, current, l.perMinute
	}
	buckets[minute] = current + 1
	return true, current + 1, l.perMinute
}

// Reset returns the start of the next minute, when the current bucket
// rolls over.
func (l *Limiter) Reset() time.Time {
	return l.now().Truncate(time.Minute).Add(time.Minute)
}

// RetryAfter returns the whole seconds until Reset, never less than 1,
// for the Retry-After header on rejected requests.
func (l *Limiter) RetryAfter() int {
	secs := int(l.Reset().Sub(l.now()).Seconds())
	if secs < 1 {
		return 1
	}
	return secs
}
