package middleware

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ErrRateLimited is attached to requests rejected by RateLimiter.
var ErrRateLimited = errors.New("rate limit exceeded")

// ipLimiters keeps one token bucket per client IP.
// Buckets idle for longer than idleTTL are dropped on the next sweep.
type ipLimiters struct {
	mu       sync.Mutex
	perMin   int
	idleTTL  time.Duration
	lastScan time.Time
	buckets  map[string]*ipBucket
}

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiters(perMinute int) *ipLimiters {
	return &ipLimiters{
		perMin:  perMinute,
		idleTTL: 10 * time.Minute,
		buckets: make(map[string]*ipBucket),
	}
}

func (l *ipLimiters) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastScan) > l.idleTTL {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > l.idleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastScan = now
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMin)), l.perMin)}
		l.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// RateLimiter is an in-memory middleware that limits the number of requests per client IP.
//
// Behavior:
//   - Allows bursts of up to perMinute requests, refilled evenly over one minute.
//   - Identifies clients by their IP address.
//   - If limit exceeded, returns HTTP 429 Too Many Requests.
//   - perMinute <= 0 disables limiting.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RateLimiter(config.AppConfig.Server.RateLimitPerMinute))
//
// Response when limit exceeded:
//
//	HTTP/1.1 429 Too Many Requests
//	{"error": "rate limit exceeded", "timestamp": "..."}
func RateLimiter(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiters := newIPLimiters(perMinute)
	return func(c *gin.Context) {
		if !limiters.allow(c.ClientIP(), time.Now()) {
			AbortWithError(c, http.StatusTooManyRequests, ErrRateLimited.Error(), nil)
			return
		}
		c.Next()
	}
}
