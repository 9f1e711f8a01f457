package user

import (
	"net/http"

	"bitwise74/user-api/internal"
	"bitwise74/user-api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func UserCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data createBody
	if !response.BindJSON(c, &data) {
		return
	}

	if err := data.validate(); err != nil {
		zap.L().Debug("Invalid user data", zap.Error(err), zap.String("requestID", requestID))

		response.Error(c, err)
		return
	}

	user, err := d.Users.Create(c.Request.Context(), data.toCreate())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}
