package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// NewTimeoutMiddleware puts a deadline on the request context. Store calls
// made with that context give their connection back once it passes.
func NewTimeoutMiddleware(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
