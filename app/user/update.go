package user

import (
	"net/http"

	"bitwise74/user-api/internal"
	"bitwise74/user-api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserUpdate serves both PUT and PATCH. The owner middleware has already
// checked that the caller is the target.
func UserUpdate(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	targetID := c.GetUint("targetID")

	var data updateBody
	if !response.BindJSON(c, &data) {
		return
	}

	if err := data.validate(); err != nil {
		zap.L().Debug("Invalid user data", zap.Error(err), zap.String("requestID", requestID))

		response.Error(c, err)
		return
	}

	user, err := d.Users.Update(c.Request.Context(), targetID, data.toChanges())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
