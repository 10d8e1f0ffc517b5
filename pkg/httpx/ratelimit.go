package httpx

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/aussiebroadwan/regain/pkg/slogx"
)

// WindowPolicy is a fixed-window quota: at most MaxRequests per Window per
// bucket key. The counter resets entirely when the window elapses.
type WindowPolicy struct {
	MaxRequests int
	Window      time.Duration
}

// Route-class policies. Recovery starts are the most brute-forceable surface
// so they get the strictest tier.
// Each can be overridden via environment variables (see ParseWindowFromEnv).
var (
	// StartPolicy guards session starts.
	// Override with: RATELIMIT_START_REQUESTS, RATELIMIT_START_WINDOW_SEC
	StartPolicy = WindowPolicy{MaxRequests: 5, Window: 15 * time.Minute}

	// VerifyPolicy guards answer submission and token revocation.
	// Override with: RATELIMIT_VERIFY_REQUESTS, RATELIMIT_VERIFY_WINDOW_SEC
	VerifyPolicy = WindowPolicy{MaxRequests: 10, Window: 15 * time.Minute}

	// CompletePolicy guards token validation and completion.
	// Override with: RATELIMIT_COMPLETE_REQUESTS, RATELIMIT_COMPLETE_WINDOW_SEC
	CompletePolicy = WindowPolicy{MaxRequests: 20, Window: 15 * time.Minute}
)

func init() {
	StartPolicy = ParseWindowFromEnv("START", StartPolicy)
	VerifyPolicy = ParseWindowFromEnv("VERIFY", VerifyPolicy)
	CompletePolicy = ParseWindowFromEnv("COMPLETE", CompletePolicy)
}

// ParseWindowFromEnv reads a window policy from RATELIMIT_{prefix}_REQUESTS
// and RATELIMIT_{prefix}_WINDOW_SEC, falling back to the given defaults.
func ParseWindowFromEnv(prefix string, def WindowPolicy) WindowPolicy {
	policy := def

	if val := os.Getenv("RATELIMIT_" + prefix + "_REQUESTS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			policy.MaxRequests = n
		}
	}
	if val := os.Getenv("RATELIMIT_" + prefix + "_WINDOW_SEC"); val != "" {
		if sec, err := strconv.Atoi(val); err == nil && sec > 0 {
			policy.Window = time.Duration(sec) * time.Second
		}
	}

	return policy
}

// Decision is the outcome of a single rate-limit check. RetryAfter is only
// meaningful when Allowed is false and reports time until the window resets.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// WindowLimiter enforces a fixed-window policy per bucket key. Both the
// in-memory and Redis implementations satisfy this.
type WindowLimiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryWindowLimiter is the in-process fixed-window limiter. Counter
// increments are atomic under a single mutex; stale buckets are pruned
// opportunistically so ephemeral keys do not accumulate forever.
type MemoryWindowLimiter struct {
	policy WindowPolicy

	mu        sync.Mutex
	buckets   map[string]*windowBucket
	lastPrune time.Time

	// now is swappable for tests.
	now func() time.Time
}

type windowBucket struct {
	count   int
	started time.Time
}

func NewMemoryWindowLimiter(policy WindowPolicy) *MemoryWindowLimiter {
	return &MemoryWindowLimiter{
		policy:    policy,
		buckets:   make(map[string]*windowBucket),
		lastPrune: time.Now(),
		now:       time.Now,
	}
}

func (l *MemoryWindowLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.maybePrune(now)

	b, ok := l.buckets[key]
	if !ok || now.Sub(b.started) >= l.policy.Window {
		// Fresh window: the full quota is available again.
		b = &windowBucket{started: now}
		l.buckets[key] = b
	}

	if b.count >= l.policy.MaxRequests {
		return Decision{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: l.policy.Window - now.Sub(b.started),
		}, nil
	}

	b.count++
	return Decision{Allowed: true, Remaining: l.policy.MaxRequests - b.count}, nil
}

// maybePrune drops buckets whose window has long elapsed. Called with the
// mutex held.
func (l *MemoryWindowLimiter) maybePrune(now time.Time) {
	if now.Sub(l.lastPrune) < 5*time.Minute {
		return
	}
	l.lastPrune = now

	for key, b := range l.buckets {
		if now.Sub(b.started) >= l.policy.Window {
			delete(l.buckets, key)
		}
	}
}

// RateLimit enforces a window limiter before the handler runs, so abusive
// traffic never reaches the session manager or token store. Rejections carry
// Retry-After with the seconds until the window resets.
//
// A limiter backend failure (e.g. Redis outage) fails open with a warning:
// recovery availability is preferred over strict quota enforcement.
func RateLimit(limiter WindowLimiter, policy WindowPolicy, extract KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			key := extract(r)
			if key == "" {
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			decision, err := limiter.Allow(ctx, key)
			if err != nil {
				log.Warn("rate limit backend unavailable, allowing request", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			if !decision.Allowed {
				retryAfter := max(int(decision.RetryAfter.Seconds()), 1)

				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", policy.MaxRequests))
				w.Header().Set("X-RateLimit-Window", policy.Window.String())

				log.Warn("rate limit exceeded",
					"endpoint", r.URL.Path,
					"retry_after", retryAfter,
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
