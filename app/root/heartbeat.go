package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Banner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "User Management API is running!",
	})
}

func Heartbeat(c *gin.Context) {
	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}
