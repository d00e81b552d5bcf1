package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter counts events per key inside a sliding window. It throttles
// socket connection attempts per client IP.
type RateLimiter struct {
	mu     sync.Mutex
	seen   map[string]*windowInfo
	limit  int
	window time.Duration
	now    func() time.Time
}

type windowInfo struct {
	count   int
	resetAt time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return NewRateLimiterWithNow(limit, window, time.Now)
}

func NewRateLimiterWithNow(limit int, window time.Duration, now func() time.Time) *RateLimiter {
	rl := &RateLimiter{
		seen:   make(map[string]*windowInfo),
		limit:  limit,
		window: window,
		now:    now,
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) cleanup() {
	if rl.window <= 0 {
		return
	}

	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := rl.now()
		for key, info := range rl.seen {
			if now.After(info.resetAt) {
				delete(rl.seen, key)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	info, exists := rl.seen[key]
	if !exists || now.After(info.resetAt) {
		rl.seen[key] = &windowInfo{count: 1, resetAt: now.Add(rl.window)}
		return true
	}

	if info.count >= rl.limit {
		return false
	}

	info.count++
	return true
}

// ConnectionLimit rejects upgrade attempts once a client IP exceeds the
// limiter's window budget.
func ConnectionLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many connection attempts"})
			return
		}
		c.Next()
	}
}
