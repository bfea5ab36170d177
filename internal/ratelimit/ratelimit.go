// Package ratelimit throttles requests per client IP with a fixed window.
//
// HOW IT WORKS:
// Each client IP owns a counter that resets every window. A request
// increments its counter; once the counter passes the limit, further
// requests in that window get 429 Too Many Requests.
//
// The counter lives behind the Store interface, so the server can run with
// the in-process MemoryStore on a single node or the Redis-backed store
// when several replicas must share one view of each client's rate.
package ratelimit

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Store counts hits per key within a window. Implementations must expire a
// key's count once its window passes.
type Store interface {
	// Incr adds one hit for key and returns the hit count in the current
	// window, including this one.
	Incr(key string, window time.Duration) (int, error)
}

// Limiter wraps a Store with the limit policy and exposes the middleware.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	logger *slog.Logger
}

// New creates a Limiter allowing limit requests per window per client IP.
func New(store Store, limit int, window time.Duration, logger *slog.Logger) *Limiter {
	return &Limiter{
		store:  store,
		limit:  limit,
		window: window,
		logger: logger,
	}
}

// Middleware enforces the limit. Mount it after chi's RealIP so RemoteAddr
// already reflects X-Forwarded-For / X-Real-IP from the proxy.
//
// A store failure fails OPEN: a broken Redis should degrade to "no
// throttling", not take the whole API down with it.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ClientIP(r)

		count, err := l.store.Incr(key, l.window)
		if err != nil {
			l.logger.Error("rate limit store unavailable, letting request through",
				slog.String("error", err.Error()),
			)
			next.ServeHTTP(w, r)
			return
		}

		if count > l.limit {
			l.logger.Warn("rate limit exceeded",
				slog.String("ip", key),
				slog.Int("count", count),
			)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(l.window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":"rate_limited","message":"too many requests, slow down"}`)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClientIP extracts the client address without the port. RemoteAddr is
// "host:port" for direct connections but may already be a bare IP after
// proxy-header rewriting.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
