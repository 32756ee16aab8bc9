package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/getmockd/specdocs/pkg/httputil"
)

// Middleware enforces l per client IP. A nil limiter passes every request
// through.
func Middleware(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, seconds := l.Allow(l.ClientIP(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.Limit()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
			httputil.WriteTooManyRequests(w)
		})
	}
}
