package middleware

import (
	"net"
	"net/http"

	"github.com/vincentyap91/todolist/internal/api/shared"
	"github.com/vincentyap91/todolist/internal/ratelimit"
)

// RateLimit rejects requests with 429 once the caller's bucket is empty.
// Authenticated requests are keyed by user ID, others by client address, so
// it can run both before and after the auth gate.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(rateLimitKey(r)) {
				w.Header().Set("Retry-After", "1")
				shared.RespondWithError(w, r, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	if user, ok := shared.UserFromContext(r.Context()); ok {
		return "user:" + user.ID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}
