package auth

import (
	"net/http"

	"bitwise74/user-api/internal"
	"bitwise74/user-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// Logout revokes the token the request was authenticated with. Other
// sessions of the same user stay valid.
func Logout(c *gin.Context, d *internal.Deps) {
	if err := d.Auth.Logout(c.Request.Context(), c.GetString("token")); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully logged out",
	})
}
