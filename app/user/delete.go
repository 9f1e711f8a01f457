package user

import (
	"net/http"

	"bitwise74/user-api/internal"
	"bitwise74/user-api/internal/apperr"
	"bitwise74/user-api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func UserDelete(c *gin.Context, d *internal.Deps) {
	targetID := c.GetUint("targetID")

	deleted, err := d.Users.Delete(c.Request.Context(), targetID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if !deleted {
		response.Error(c, apperr.New(apperr.ErrNotFound, "User not found"))
		return
	}

	zap.L().Info("User deleted", zap.Uint("userID", targetID), zap.String("requestID", c.GetString("requestID")))

	c.Status(http.StatusNoContent)
}
