package middleware

import (
	"strconv"

	"bitwise74/user-api/internal/apperr"
	"bitwise74/user-api/internal/service"
	"bitwise74/user-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// NewOwnerMiddleware only lets a request through when the authenticated
// user is the one named by the :id route parameter. It has to run after
// the JWT middleware.
func NewOwnerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		target, err := ParseID(c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}

		if err := service.Authorize(c.GetUint("userID"), target); err != nil {
			response.Error(c, err)
			return
		}

		c.Set("targetID", target)
		c.Next()
	}
}

// ParseID parses a positive numeric record ID from a path parameter
func ParseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.ErrValidation, "Invalid user ID")
	}

	return uint(id), nil
}
