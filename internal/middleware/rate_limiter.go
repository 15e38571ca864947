package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/GabKongroo/NothingSpecial/internal/config"
	"github.com/GabKongroo/NothingSpecial/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// hit counts one request against key in a fixed window and returns the
// running count and the time left in the window.
func hit(ctx context.Context, rdb redis.Cmdable, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return count, window, err
		}
		return count, window, nil
	}
	ttl, err := rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	return count, ttl, nil
}

// RateLimiter limits requests per client IP with a Redis counter. Requests
// pass through when Redis is unavailable.
func RateLimiter(rdb redis.Cmdable, cfg *config.Config) gin.HandlerFunc {
	limit := int64(cfg.RateLimitRequests)
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s", c.ClientIP())
		count, ttl, err := hit(c.Request.Context(), rdb, key, cfg.RateLimitDuration)
		if err != nil {
			logger.Warn("rate limiter bypassed", logger.ErrorField(err))
			c.Next()
			return
		}

		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > limit {
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests",
				"retry_after": int(ttl.Seconds()),
			})
			return
		}

		c.Next()
	}
}
