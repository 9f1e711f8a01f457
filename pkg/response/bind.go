package response

import (
	"errors"
	"net/http"

	"bitwise74/user-api/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// Bind decodes the request body into obj picking the decoder from the
// Content-Type header. When it fails the request is aborted and false is
// returned.
func Bind(c *gin.Context, obj any) bool {
	return bindWith(c, obj, binding.Default(c.Request.Method, c.ContentType()))
}

// BindJSON is Bind for endpoints that only take JSON
func BindJSON(c *gin.Context, obj any) bool {
	return bindWith(c, obj, binding.JSON)
}

func bindWith(c *gin.Context, obj any, b binding.Binding) bool {
	err := c.ShouldBindWith(obj, b)
	if err == nil {
		return true
	}

	zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", c.GetString("requestID")))

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":     "Request body size exceeds limit",
			"requestID": c.GetString("requestID"),
		})
		return false
	}

	Error(c, apperr.New(apperr.ErrValidation, "Invalid request body"))
	return false
}
