package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultBucketTTL = 10 * time.Minute

// AttemptLimiter keeps a token bucket per identifier.
type AttemptLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
	buckets map[string]*bucket
	swept   time.Time
}

type bucket struct {
	lim *rate.Limiter
	ts  time.Time
}

// NewAttemptLimiter allows perMinute attempts per identifier with the given burst.
func NewAttemptLimiter(perMinute float64, burst int) *AttemptLimiter {
	if burst < 1 {
		burst = 1
	}
	return &AttemptLimiter{
		limit:   rate.Limit(perMinute / 60),
		burst:   burst,
		ttl:     defaultBucketTTL,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow consumes one attempt for identifier and reports whether it was within budget.
func (l *AttemptLimiter) Allow(identifier string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	b, ok := l.buckets[identifier]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[identifier] = b
	}
	b.ts = now
	return b.lim.AllowN(now, 1)
}

// Len reports the number of tracked identifiers.
func (l *AttemptLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *AttemptLimiter) sweep(now time.Time) {
	if now.Sub(l.swept) < l.ttl {
		return
	}
	for k, b := range l.buckets {
		if now.Sub(b.ts) > l.ttl {
			delete(l.buckets, k)
		}
	}
	l.swept = now
}
