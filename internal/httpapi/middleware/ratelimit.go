package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc extracts the rate-limit bucket key for a request.
type KeyFunc func(c *gin.Context) string

// KeyByIP buckets requests by client IP. The webhook surface carries no
// authenticated identity, so IP is the only stable key available.
func KeyByIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// visitor is one token bucket plus the last time it was touched.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a per-key token bucket. Buckets idle for longer than
// ten minutes are evicted opportunistically, roughly every 5000 lookups, to
// keep the map bounded without a background goroutine.
//
// rps <= 0 disables limiting entirely.
func RateLimiter(rps float64, burst int, key KeyFunc) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if key == nil {
		key = KeyByIP
	}

	var (
		mu       sync.Mutex
		visitors = make(map[string]*visitor)
		lookups  int
	)

	const (
		ttl     = 10 * time.Minute
		gcEvery = 5000
	)

	return func(c *gin.Context) {
		k := key(c)
		now := time.Now()

		mu.Lock()
		v, ok := visitors[k]
		if !ok {
			v = &visitor{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			visitors[k] = v
		}
		v.lastSeen = now

		lookups++
		if lookups >= gcEvery {
			lookups = 0
			for id, vv := range visitors {
				if now.Sub(vv.lastSeen) > ttl {
					delete(visitors, id)
				}
			}
		}
		allowed := v.limiter.Allow()
		mu.Unlock()

		if !allowed {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
