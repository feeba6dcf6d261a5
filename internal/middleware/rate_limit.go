// internal/middleware/rate_limit.go
package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/javajoker/rental-backend/internal/config"
	"github.com/javajoker/rental-backend/internal/utils"
)

// RateLimiter keeps one token bucket per client IP. Idle visitors fall out
// of the cache after the configured TTL.
type RateLimiter struct {
	visitors *gocache.Cache
	mtx      sync.Mutex
	rate     rate.Limit
	burst    int
	ttl      time.Duration
}

func NewRateLimiter(r rate.Limit, b int, ttl time.Duration) *RateLimiter {
	if ttl <= 0 {
		ttl = 3 * time.Minute
	}
	return &RateLimiter{
		visitors: gocache.New(ttl, time.Minute),
		rate:     r,
		burst:    b,
		ttl:      ttl,
	}
}

func NewRateLimiterFromConfig(cfg config.RateLimitConfig) *RateLimiter {
	return NewRateLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst, cfg.VisitorTTL)
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	if cached, found := rl.visitors.Get(ip); found {
		limiter := cached.(*rate.Limiter)
		// refresh expiry on every hit
		rl.visitors.Set(ip, limiter, rl.ttl)
		return limiter
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.visitors.Set(ip, limiter, rl.ttl)
	return limiter
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getVisitor(c.ClientIP()).Allow() {
			utils.TooManyRequestsResponse(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
