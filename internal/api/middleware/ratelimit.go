package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/alexander-datskov/chat67/internal/metrics"
)

// RateLimit defines limits for an endpoint pattern.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// RateLimiter implements fixed-window rate limiting over an in-memory
// counter cache, keyed by client IP. The poll endpoints are sized for the
// documented cadences (1s effect/message polls, 30s heartbeats) with
// generous headroom.
type RateLimiter struct {
	counters *gocache.Cache
	limits   map[string]RateLimit
	logger   zerolog.Logger
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		counters: gocache.New(5*time.Minute, 10*time.Minute),
		logger:   logger,
		limits: map[string]RateLimit{
			"POST /set-username":  {20, time.Hour},
			"POST /send":          {60, time.Minute},
			"POST /send-gif":      {10, time.Minute},
			"POST /check-effects": {180, time.Minute},
			"GET /messages":       {180, time.Minute},
			"GET /rooms":          {120, time.Minute},
			"GET /online-users":   {120, time.Minute},
			"GET /typing-status":  {180, time.Minute},
			"POST /admin/login":   {10, 10 * time.Minute},
		},
	}
}

// CheckAndIncrement checks the limit for one key and increments the window
// counter. Returns (allowed, remaining, resetAt).
func (rl *RateLimiter) CheckAndIncrement(key string, limit int, window time.Duration) (bool, int, time.Time) {
	now := time.Now()
	bucket := now.Unix() / int64(window.Seconds())
	windowKey := fmt.Sprintf("%s:%d", key, bucket)

	count := 1
	if err := rl.counters.Add(windowKey, 1, window*2); err != nil {
		n, incErr := rl.counters.IncrementInt(windowKey, 1)
		if incErr == nil {
			count = n
		}
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	resetAt := time.Unix((bucket+1)*int64(window.Seconds()), 0)
	return count <= limit, remaining, resetAt
}

// Middleware returns the rate limiting middleware.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, pattern := rl.findLimit(r)
		if limit == nil {
			next.ServeHTTP(w, r)
			return
		}

		ip := RealIP(r)
		key := "ratelimit:" + pattern + ":" + ip
		allowed, remaining, resetAt := rl.CheckAndIncrement(key, limit.Requests, limit.Window)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(resetAt).Seconds())))

			metrics.RateLimitHits.WithLabelValues(pattern).Inc()
			rl.logger.Warn().
				Str("type", "security").
				Str("event", "rate_limit_exceeded").
				Str("ip", ip).
				Str("endpoint", r.URL.Path).
				Msg("rate limit exceeded")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// findLimit finds the matching rate limit for a request.
func (rl *RateLimiter) findLimit(r *http.Request) (*RateLimit, string) {
	key := r.Method + " " + r.URL.Path

	for pattern, limit := range rl.limits {
		if strings.HasPrefix(key, pattern) {
			l := limit // Copy to avoid pointer issues
			return &l, pattern
		}
	}
	return nil, ""
}
