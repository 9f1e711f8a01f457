package middleware

import (
	"strings"

	"bitwise74/user-api/internal/apperr"
	"bitwise74/user-api/internal/service"
	"bitwise74/user-api/pkg/response"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// NewJWTMiddleware authenticates the bearer token from the Authorization
// header. On success the user, its ID and the raw token are stored as
// "user", "userID" and "token".
func NewJWTMiddleware(a *service.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Error(c, err)
			return
		}

		user, err := a.Validate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Set("token", token)
		c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", apperr.New(apperr.ErrUnauthenticated, "Authorization header missing")
	}

	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", apperr.New(apperr.ErrUnauthenticated, "Invalid authorization header format")
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", apperr.New(apperr.ErrUnauthenticated, "Invalid authorization header format")
	}

	return token, nil
}
