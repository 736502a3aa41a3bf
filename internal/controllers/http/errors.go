package http

import (
	"errors"
	"fmt"
	"net/http"

	"marketplace/internal/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func statusOf(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the caller-safe message for known kinds. Internal
// errors are logged with their stack and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind != apperr.KindInternal {
		c.JSON(statusOf(ae.Kind), gin.H{"error": ae.Message})
		return
	}
	zap.L().Error("http: request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.String("error", err.Error()),
		zap.String("detail", fmt.Sprintf("%+v", err)),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
