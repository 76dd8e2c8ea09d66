package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RealIP resolves the client address behind a reverse proxy. The first
// entry of X-Forwarded-For wins when present and parseable; otherwise
// the connection's remote address is used.
func RealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimiter counts requests per key over a fixed window. It guards the
// credential endpoints against brute force, so the window resets rather
// than slides: simple is enough at this scale.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	seen    map[string]int
	resetAt map[string]time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		seen:    make(map[string]int),
		resetAt: make(map[string]time.Time),
	}
}

// Allow records one request for the key and reports whether it is still
// within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if expiry, ok := rl.resetAt[key]; !ok || now.After(expiry) {
		rl.seen[key] = 1
		rl.resetAt[key] = now.Add(rl.window)
		return true
	}
	rl.seen[key]++
	return rl.seen[key] <= rl.limit
}

// Sweep drops keys whose window has passed. Called periodically so idle
// clients do not accumulate.
func (rl *RateLimiter) Sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, expiry := range rl.resetAt {
		if now.After(expiry) {
			delete(rl.seen, key)
			delete(rl.resetAt, key)
		}
	}
}

// RateLimit rejects requests over the limiter's budget with 429, keying
// by client IP.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(RealIP(r)) {
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
