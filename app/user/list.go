package user

import (
	"net/http"
	"strconv"

	"bitwise74/user-api/internal"
	"bitwise74/user-api/internal/apperr"
	"bitwise74/user-api/internal/repository"
	"bitwise74/user-api/pkg/response"

	"github.com/gin-gonic/gin"
)

func UserList(c *gin.Context, d *internal.Deps) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, err := queryInt(c, "limit", repository.DefaultListLimit)
	if err != nil {
		response.Error(c, err)
		return
	}

	users, err := d.Users.List(c.Request.Context(), skip, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.New(apperr.ErrValidation, "Query parameter "+key+" must be a non-negative integer")
	}

	return n, nil
}
