package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/config"
	"github.com/stemsi/gscribe-backend/internal/response"
)

// RateLimiter is a fixed-window per-IP limiter backed by Redis, so every
// server instance shares the same counters.
type RateLimiter struct {
	rdb    *redis.Client
	scope  string
	limit  int64
	window time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

// NewRateLimiter allows limit requests per window for each client IP
// (e.g., 10 requests per minute).
func NewRateLimiter(rdb *redis.Client, scope string, limit int, window time.Duration, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		scope:  scope,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
		log:    log.With().Str("component", "rate_limiter").Str("scope", scope).Logger(),
	}
}

// Middleware returns a Gin middleware that rate-limits requests by IP.
// Requests pass when Redis is unreachable.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := rl.now()
		slot := now.UnixNano() / int64(rl.window)
		key := config.CacheKey.RateLimitKey(rl.scope, c.ClientIP(), slot)

		ctx := c.Request.Context()
		pipe := rl.rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, rl.window)
		if _, err := pipe.Exec(ctx); err != nil {
			rl.log.Warn().Err(err).Msg("Rate limiter unavailable")
			c.Next()
			return
		}

		remaining := rl.limit - incr.Val()
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(rl.limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if incr.Val() > rl.limit {
			reset := time.Unix(0, (slot+1)*int64(rl.window)).Sub(now)
			c.Header("Retry-After", strconv.Itoa(int(reset.Seconds())+1))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}
