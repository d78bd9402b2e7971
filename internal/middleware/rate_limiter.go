package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per client IP. Idle buckets expire.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	buckets *gocache.Cache
}

// NewRateLimiter allows perMinute requests per client with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		buckets: gocache.New(10*time.Minute, 20*time.Minute),
	}
}

func (l *RateLimiter) limiter(ip string) *rate.Limiter {
	if v, ok := l.buckets.Get(ip); ok {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	if err := l.buckets.Add(ip, lim, gocache.DefaultExpiration); err != nil {
		// another request created it first
		if v, ok := l.buckets.Get(ip); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

// Handler rejects requests over the limit with 429.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	retry := strconv.Itoa(max(1, int(math.Ceil(1/float64(l.limit)))))
	return func(c *gin.Context) {
		lim := l.limiter(c.ClientIP())
		if !lim.Allow() {
			c.Header("Retry-After", retry)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, please retry later",
			})
			return
		}
		c.Next()
	}
}
