package middleware

import (
	"net/http"
	"strconv"

	"github.com/regiq/regiq/internal/auth"
	"github.com/regiq/regiq/internal/ratelimit"
)

// RedisRateLimit enforces a per-key requests-per-minute limit using the
// Redis-backed manager; if the manager is nil or the request carries no
// principal, it no-ops and calls next.
func RedisRateLimit(m *ratelimit.Manager, rpm int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}
			p := auth.GetPrincipal(r.Context())
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}

			allowed, reset, err := m.CheckRate(r.Context(), p.APIKeyID, r.Method, r.URL.Path, rpm)
			if err == nil && !allowed {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rpm))
				w.Header().Set("Retry-After", strconv.Itoa(reset))
				write429(w)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rpm))
			next.ServeHTTP(w, r)
		})
	}
}
