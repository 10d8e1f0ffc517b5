package httpx

import (
	"net/http"
	"sync"
	"time"

	"github.com/aussiebroadwan/regain/pkg/slogx"
	"golang.org/x/time/rate"
)

// PublicGuard is a light token-bucket guard for public read-only endpoints
// (health, stats, swagger). These don't need window-reset semantics, only a
// ceiling that keeps a misbehaving poller from saturating the service.
type PublicGuard struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewPublicGuard allows requestsPerMinute sustained requests per key with the
// same amount available as a burst.
func NewPublicGuard(requestsPerMinute int) *PublicGuard {
	return &PublicGuard{
		rate:  rate.Limit(float64(requestsPerMinute) / time.Minute.Seconds()),
		burst: requestsPerMinute,
	}
}

func (g *PublicGuard) limiter(key string) *rate.Limiter {
	if l, ok := g.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}
	actual, _ := g.limiters.LoadOrStore(key, rate.NewLimiter(g.rate, g.burst))
	return actual.(*rate.Limiter)
}

// Middleware limits by caller IP.
func (g *PublicGuard) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !g.limiter(IPKeyExtractor(r)).Allow() {
				slogx.FromContext(r.Context()).Warn("public endpoint rate limit exceeded",
					"endpoint", r.URL.Path,
				)
				WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"error":             "rate_limited",
					"error_description": "Too many requests. Please try again later.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
