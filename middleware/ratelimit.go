package middleware

import (
	"math"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// attemptLimiter is a sliding window of attempt times per key
type attemptLimiter struct {
	mu       sync.Mutex
	max      int
	window   time.Duration
	attempts map[string][]time.Time
}

func newAttemptLimiter(maxAttempts int, window time.Duration) *attemptLimiter {
	return &attemptLimiter{
		max:      maxAttempts,
		window:   window,
		attempts: make(map[string][]time.Time),
	}
}

// allow records an attempt for key at now. Over budget it records nothing and
// returns how long until the oldest attempt leaves the window.
func (l *attemptLimiter) allow(key string, now time.Time) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.prune(key, now)
	if len(recent) >= l.max {
		if len(recent) == 0 {
			return l.window, false
		}
		return recent[0].Add(l.window).Sub(now), false
	}
	l.attempts[key] = append(recent, now)
	return 0, true
}

// prune drops attempts older than the window; caller holds mu
func (l *attemptLimiter) prune(key string, now time.Time) []time.Time {
	ts := l.attempts[key]
	cutoff := now.Add(-l.window)
	i := sort.Search(len(ts), func(i int) bool { return ts[i].After(cutoff) })
	if i == len(ts) {
		delete(l.attempts, key)
		return nil
	}
	ts = ts[i:]
	l.attempts[key] = ts
	return ts
}

func (l *attemptLimiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.attempts {
		l.prune(key, now)
	}
}

func (l *attemptLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}

// retryAfterSeconds rounds up, never below one second
func retryAfterSeconds(wait time.Duration) int {
	return max(1, int(math.Ceil(wait.Seconds())))
}

// LoginRateLimit limits auth attempts per client IP.
// At most maxAttempts requests per window; further ones get 429.
func LoginRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	limiter := newAttemptLimiter(maxAttempts, window)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for now := range ticker.C {
			limiter.sweep(now)
		}
	}()

	return func(c *gin.Context) {
		wait, ok := limiter.allow(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "Demasiados intentos, probá de nuevo en unos minutos",
			})
			return
		}
		c.Next()
	}
}
