// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/javajoker/atelier-backend/internal/config"
	"github.com/javajoker/atelier-backend/internal/utils"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiter struct {
	visitors map[string]*visitor
	mtx      sync.Mutex
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
	}

	// Clean up old visitors every minute
	go rl.cleanupVisitors()

	return rl
}

func (rl *RateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mtx.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(rl.visitors, ip)
			}
		}
		rl.mtx.Unlock()
	}
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
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

// GeneralRateLimit throttles every request per client IP. A non-positive rate disables it.
func GeneralRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if cfg.GeneralPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return NewRateLimiter(rate.Limit(cfg.GeneralPerSecond), cfg.GeneralBurst).Middleware()
}

// MutationRateLimit throttles stage and configuration writes; reads pass through.
func MutationRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if cfg.MutationsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limit := NewRateLimiter(rate.Limit(cfg.MutationsPerSecond), cfg.MutationBurst).Middleware()
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		limit(c)
	}
}
