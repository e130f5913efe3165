package middleware

import (
	"net/http"
	"sync"
	"time"

	"hrms-lite/internal/shared/apperror"
	"hrms-lite/internal/shared/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	visitorIdleTTL   = 3 * time.Minute
	visitorSweepEach = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type IPRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	r         rate.Limit // requests per second
	b         int        // burst
	now       func() time.Time
	lastSweep time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		r:        r,
		b:        b,
		now:      time.Now,
	}
}

// Allow spends one token from key's bucket. Buckets idle for longer than
// visitorIdleTTL are dropped on a later call.
func (i *IPRateLimiter) Allow(key string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if now.Sub(i.lastSweep) >= visitorSweepEach {
		for k, v := range i.visitors {
			if now.Sub(v.lastSeen) > visitorIdleTTL {
				delete(i.visitors, k)
			}
		}
		i.lastSweep = now
	}

	v, ok := i.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(i.r, i.b)}
		i.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// RateLimitByIP keeps one token bucket per client address. A non-positive
// rate disables the limiter.
func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	if r <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := NewIPRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			response.Abort(c, http.StatusTooManyRequests, apperror.CodeRateLimited, "Too many requests, slow down")
			return
		}
		c.Next()
	}
}
