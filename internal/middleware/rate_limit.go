package middleware

import (
	"net/http"
	"sync"
	"time"

	"aerosafety/rbo/internal/common"
	"aerosafety/rbo/internal/constants"
	"aerosafety/rbo/internal/logging"

	"golang.org/x/time/rate"
)

// RateLimiter throttles requests per client IP with a token bucket
type RateLimiter struct {
	limiters    map[string]*rate.Limiter
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	whitelisted map[string]bool
}

// NewRateLimiter allows perSecond requests per IP with the given burst
func NewRateLimiter(perSecond float64, burst int, whitelistedIPs []string) *RateLimiter {
	wl := make(map[string]bool, len(whitelistedIPs))
	for _, ip := range whitelistedIPs {
		wl[ip] = true
	}
	return &RateLimiter{
		limiters:    make(map[string]*rate.Limiter),
		limit:       rate.Limit(perSecond),
		burst:       burst,
		whitelisted: wl,
	}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[ip]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters[ip] = limiter
	return limiter
}

// Allow reports whether ip may make another request now
func (rl *RateLimiter) Allow(ip string) bool {
	if rl.whitelisted[ip] {
		return true
	}
	return rl.getLimiter(ip).Allow()
}

// Middleware rejects throttled requests with 429
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := common.ClientIP(r)
		if !rl.Allow(ip) {
			logging.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", "5")
			common.RespondError(w, time.Now(), nil, constants.MsgTooManyRequests, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
