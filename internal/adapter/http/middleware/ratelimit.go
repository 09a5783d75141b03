package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tableserve-backend/pkg/apperror"
	"tableserve-backend/pkg/response"
)

// RateLimitCounter is the fixed-window counter backing the limiter.
type RateLimitCounter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimitRule bounds one endpoint group.
type RateLimitRule struct {
	Name   string
	Limit  int64
	Window time.Duration
}

// RateLimit rejects callers exceeding the rule's budget per client IP. A
// counter failure lets the request through: trigger storms are annoying,
// dropped settlements are worse.
func RateLimit(counter RateLimitCounter, rule RateLimitRule, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rule.Name + ":" + c.ClientIP()

		count, err := counter.Increment(c.Request.Context(), key, rule.Window)
		if err != nil {
			logger.Warn().Err(err).Str("rule", rule.Name).Msg("rate limit counter unavailable, allowing request")
			c.Next()
			return
		}

		if count > rule.Limit {
			response.AbortError(c, apperror.NewRateLimited())
			return
		}
		c.Next()
	}
}
