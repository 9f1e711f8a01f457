package user

import (
	"net/http"

	"bitwise74/user-api/internal"
	"bitwise74/user-api/pkg/middleware"
	"bitwise74/user-api/pkg/response"

	"github.com/gin-gonic/gin"
)

func UserFetch(c *gin.Context, d *internal.Deps) {
	id, err := middleware.ParseID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := d.Users.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
