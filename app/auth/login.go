// Package auth contains the session endpoints
package auth

import (
	"net/http"

	"bitwise74/user-api/internal"
	"bitwise74/user-api/internal/apperr"
	"bitwise74/user-api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func Login(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data loginBody
	if !response.Bind(c, &data) {
		return
	}

	if data.Username == "" || data.Password == "" {
		response.Error(c, apperr.New(apperr.ErrValidation, "Username and password can't be empty"))
		return
	}

	res, err := d.Auth.Login(c.Request.Context(), data.Username, data.Password)
	if err != nil {
		zap.L().Debug("Login failed", zap.Error(err), zap.String("requestID", requestID))

		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": res.AccessToken,
		"token_type":   "bearer",
		"user_id":      res.User.ID,
		"username":     res.User.Username,
		"expires_at":   res.ExpiresAt,
	})
}
