package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/brainbattle-platform/brainbattle-clan/internal/repository"
)

// RateLimit returns a Gin middleware that rate-limits by client IP using the
// shared fixed-window counter. The window TTL is set on the first hit only,
// so it never slides.
func RateLimit(state repository.StateRepository, maxRequests int, window time.Duration) gin.HandlerFunc {
	if state == nil {
		panic("StateRepository cannot be nil for RateLimit middleware")
	}
	if maxRequests <= 0 {
		panic("maxRequests must be positive for RateLimit middleware")
	}
	if window <= 0 {
		panic("window duration must be positive for RateLimit middleware")
	}

	return func(c *gin.Context) {
		// Behind a proxy ClientIP honors X-Forwarded-For per gin's
		// trusted-proxy settings.
		key := "http:" + c.ClientIP()

		count, err := state.IncrementRate(c.Request.Context(), key, window)
		if err != nil {
			logrus.WithError(err).Error("RateLimit: Failed to increment counter")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limiting error"})
			c.Abort()
			return
		}

		if count > int64(maxRequests) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}

		c.Next()
	}
}
