package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/audeasy/audeasy/internal/auth"
	"github.com/audeasy/audeasy/internal/ratelimit"
)

// RedisRateQuotaEnforcer applies per-key RPM limits and monthly quotas from
// the Redis-backed manager. A nil manager or missing principal passes
// through; anonymous traffic is covered by the in-process RateLimit.
func RedisRateQuotaEnforcer(m *ratelimit.Manager) func(http.Handler) http.Handler {
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
			rpm, monthly := m.PlanLimits(p.PlanCode)
			now := time.Now().UTC()
			method, path := r.Method, r.URL.Path

			allowed, reset, err := m.CheckRate(r.Context(), p.APIKeyID, method, path, rpm)
			if err == nil && !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(reset))
				write429(w)
				return
			}

			monthReset := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
			used, _ := m.GetQuota(r.Context(), p.APIKeyID, now)
			if used >= monthly {
				w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(monthReset).Seconds())))
				write429(w)
				return
			}

			remaining := monthly - used - 1
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rpm))
			w.Header().Set("X-Quota-Limit", strconv.Itoa(monthly))
			w.Header().Set("X-Quota-Remaining", strconv.Itoa(remaining))

			next.ServeHTTP(w, r)

			_ = m.IncQuota(r.Context(), p.APIKeyID, method, path, now)
		})
	}
}
