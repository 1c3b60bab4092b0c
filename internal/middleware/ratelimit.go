package middleware

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"forum-api/internal/response"
)

// RateLimitRule is one limiter: at most Limit requests per Window per client IP
type RateLimitRule struct {
	Name    string
	Limit   uint
	Window  time.Duration
	Message string
}

// RateLimit returns a limiter backed by redis when client is non-nil and by
// process memory otherwise. Exceeding the limit yields 429 RATE_LIMITED.
func RateLimit(client *redis.Client, rule RateLimitRule, logger *zap.Logger) gin.HandlerFunc {
	var store ratelimit.Store
	if client != nil {
		store = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: client,
			Rate:        rule.Window,
			Limit:       rule.Limit,
		})
	} else {
		store = ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  rule.Window,
			Limit: rule.Limit,
		})
	}

	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			logger.Warn("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
				zap.Time("reset_time", info.ResetTime),
			)
			response.AbortWithError(c, http.StatusTooManyRequests, response.ErrCodeRateLimited, rule.Message)
		},
		KeyFunc: func(c *gin.Context) string {
			return "forum:ratelimit:" + rule.Name + ":" + c.ClientIP()
		},
	})
}
