package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/GabKongroo/NothingSpecial/internal/config"
	"github.com/GabKongroo/NothingSpecial/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// UploadRateLimit caps bundle image uploads per client per day. The counter
// resets at local midnight.
func UploadRateLimit(rdb redis.Cmdable, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.UploadsPerDay <= 0 {
			c.Next()
			return
		}

		now := time.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
		key := fmt.Sprintf("upload_limit:%s:%s", c.ClientIP(), now.Format("2006-01-02"))

		count, ttl, err := hit(c.Request.Context(), rdb, key, midnight.Sub(now))
		if err != nil {
			logger.Warn("upload limiter bypassed", logger.ErrorField(err))
			c.Next()
			return
		}

		if count > int64(cfg.UploadsPerDay) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":               "upload_rate_limit_exceeded",
				"message":             "Too many uploads today. Please try again tomorrow.",
				"retry_after_hours":   int(ttl.Hours()),
				"max_uploads_per_day": cfg.UploadsPerDay,
			})
			return
		}

		c.Next()
	}
}
