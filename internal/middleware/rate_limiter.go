// file: internal/middleware/rate_limiter.go
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"engagehub/internal/config"
	"engagehub/internal/contextutils"
	"engagehub/internal/response"

	"go.uber.org/zap"
)

// RateLimiter enforces a per-actor request budget using a token bucket per
// key. Authenticated requests are keyed by user ID, anonymous ones by
// client IP.
type RateLimiter struct {
	config  *config.RateLimitConfig
	logger  *zap.Logger
	mu      sync.Mutex
	buckets map[string]*bucket
	done    chan struct{}
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter and starts its stale-bucket sweeper
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		config:  cfg,
		logger:  logger,
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Limit is the middleware entry point
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if !rl.config.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.actorKey(r)
		if !rl.allow(key) {
			rl.logger.Warn("Rate limit exceeded",
				zap.String("actor", key),
				zap.String("path", r.URL.Path),
			)
			w.Header().Set("Retry-After", "60")
			response.WriteError(w, r, http.StatusTooManyRequests,
				"RATE_LIMITED", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) actorKey(r *http.Request) string {
	if userID := contextutils.GetUserID(r.Context()); userID != 0 {
		return "user:" + strconv.FormatInt(userID, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func (rl *RateLimiter) allow(key string) bool {
	now := time.Now()
	refillRate := float64(rl.config.RequestsPerMinute) / 60.0
	capacity := float64(rl.config.Burst)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		rl.buckets[key] = &bucket{tokens: capacity - 1, lastSeen: now}
		return true
	}

	b.tokens += now.Sub(b.lastSeen).Seconds() * refillRate
	if b.tokens > capacity {
		b.tokens = capacity
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets idle for more than ten minutes
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			rl.mu.Lock()
			for key, b := range rl.buckets {
				if b.lastSeen.Before(cutoff) {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

// Stop stops the background sweeper
func (rl *RateLimiter) Stop() {
	close(rl.done)
}
