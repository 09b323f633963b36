package api

import (
	"net/http"
	"time"

	"github.com/outsourceapp/outsource-server/internal/http/response"
	"github.com/outsourceapp/outsource-server/internal/ratelimit"
)

// newAuthLimiter creates the rate limiter guarding the auth endpoints.
// rate: number of requests allowed per interval per client IP
// burst: maximum burst size
func newAuthLimiter(ratePerInterval int, interval time.Duration, burst int) *ratelimit.KeyedRateLimiter {
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// rateLimit limits requests by client IP.
// Returns 429 Too Many Requests when the limit is exceeded.
func (s *Server) rateLimit(limiter *ratelimit.KeyedRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := getClientIP(r)

			if !limiter.Allow(key) {
				s.logger.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				response.TooManyRequests(w, "Too many requests. Please try again later.", s.logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For (may contain multiple IPs, first is client).
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	// Check X-Real-IP.
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr (strip port).
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}
