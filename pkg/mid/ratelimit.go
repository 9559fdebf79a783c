package mid

import (
	"net/http"

	"github.com/HavenAI/haven-mvp/pkg/resilience"
)

// RateLimit returns middleware that rejects requests with 429 once the
// limiter's bucket is drained.
func RateLimit(l *resilience.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
