package middlewares

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guildroster/roster_backend/config"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed window counter per client IP kept in redis.
// A nil client means the shared connection from config.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		client := rl.client
		if client == nil {
			client = config.GetRedisDB()
		}
		if client == nil {
			c.Next()
			return
		}
		key := "RateLimit:" + c.ClientIP()
		ctx := c.Request.Context()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		// first hit opens the window
		if count == 1 {
			if err := client.Expire(ctx, key, rl.window).Err(); err != nil {
				c.AbortWithError(http.StatusInternalServerError, err)
				return
			}
		}
		if count > rl.limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
			})
			return
		}
		c.Next()
	}
}
