// Package response writes error bodies in the shape every endpoint shares
package response

import (
	"net/http"

	"bitwise74/user-api/internal/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error aborts the request with the status and message that belong to
// err. Server side failures are logged, client errors are not.
func Error(c *gin.Context, err error) {
	requestID := c.GetString("requestID")
	status := apperr.Status(err)

	if status >= http.StatusInternalServerError {
		zap.L().Error("Request failed",
			zap.Error(err),
			zap.String("path", c.FullPath()),
			zap.String("requestID", requestID))
	}

	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error":     apperr.Message(err),
		"requestID": requestID,
	})
}
