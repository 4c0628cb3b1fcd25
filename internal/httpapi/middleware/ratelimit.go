package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter enforces a fixed per-remote-address request budget: limit
// requests per window, replenished continuously via golang.org/x/time/rate
// (rate.Every(window/limit) with burst=limit approximates a fixed window
// without the thundering-herd reset of a literal bucket-per-clock-tick).
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	burst    int
}

// NewRateLimiter builds a limiter allowing limit requests per window per
// remote address.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        rate.Every(window / time.Duration(limit)),
		burst:    limit,
	}
}

func (rl *RateLimiter) forAddr(addr string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.limiters[addr]
	if !ok {
		l = rate.NewLimiter(rl.r, rl.burst)
		rl.limiters[addr] = l
	}
	return l
}

// Limit is the gin middleware enforcing the per-address budget.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		addr := c.ClientIP()
		if host, _, err := net.SplitHostPort(addr); err == nil {
			addr = host
		}
		if !rl.forAddr(addr).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status": "error", "message": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
