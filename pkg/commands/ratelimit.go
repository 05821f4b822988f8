package commands

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

// RateLimiter is a per-tenant token bucket in front of command execution.
// An exhausted bucket rejects the command before any side effect, so a
// rate-limited call never partially executes.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[primitives.TenantID]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter allowing perSecond commands with the
// given burst per tenant.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[primitives.TenantID]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

// Allow reports whether the tenant may execute one more command now.
func (r *RateLimiter) Allow(tenantID primitives.TenantID) bool {
	r.mu.Lock()
	limiter, ok := r.limiters[tenantID]
	if !ok {
		limiter = rate.NewLimiter(r.limit, r.burst)
		r.limiters[tenantID] = limiter
	}
	r.mu.Unlock()
	return limiter.Allow()
}

func (d Deps) checkRateLimit(app AppContext) error {
	if d.Limiter == nil {
		return nil
	}
	if !d.Limiter.Allow(app.TenantID) {
		return &RateLimited{Message: "tenant command rate exceeded"}
	}
	return nil
}
