// Package middleware holds the gin middleware shared by all routes.
package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goatkit/goatchat/internal/apierrors"
)

// RateLimiter implements a token bucket rate limiter keyed by client.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	cleanup time.Duration
}

type bucket struct {
	tokens     float64
	limit      float64 // max tokens (requests per hour)
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter and starts its cleanup loop.
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		cleanup: 10 * time.Minute,
	}
	go rl.cleanupLoop()
	return rl
}

// Allow checks if a request is allowed and consumes a token.
func (rl *RateLimiter) Allow(key string, limit int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[key]
	if !exists {
		b = &bucket{
			tokens:     float64(limit),
			limit:      float64(limit),
			refillRate: float64(limit) / 3600.0,
			lastRefill: time.Now(),
		}
		rl.buckets[key] = b
	}

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.limit {
		b.tokens = b.limit
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// cleanupLoop removes stale buckets periodically.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-rl.cleanup)
		for key, b := range rl.buckets {
			if b.lastRefill.Before(cutoff) {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

var globalRateLimiter = NewRateLimiter()

// RateLimit returns a middleware allowing requestsPerHour requests per
// client IP. A limit of 0 disables limiting.
func RateLimit(requestsPerHour int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if requestsPerHour <= 0 {
			c.Next()
			return
		}
		if !globalRateLimiter.Allow(c.ClientIP(), requestsPerHour) {
			apierrors.Error(c, apierrors.CodeRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}
