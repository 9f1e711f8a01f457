package auth

import (
	"net/http"

	"bitwise74/user-api/internal/model"

	"github.com/gin-gonic/gin"
)

func Validate(c *gin.Context) {
	c.JSON(http.StatusOK, c.MustGet("user").(*model.User))
}
