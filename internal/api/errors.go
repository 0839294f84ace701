package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qacart-backend-go/internal/core"
)

// genericErrorMessage is returned for failures with no user-facing message.
const genericErrorMessage = "حدث خطأ غير متوقع، يرجى المحاولة لاحقاً"

var statusByKind = map[core.ErrorKind]int{
	core.KindValidation:      http.StatusBadRequest,
	core.KindUnauthenticated: http.StatusUnauthorized,
	core.KindForbidden:       http.StatusForbidden,
	core.KindNotFound:        http.StatusNotFound,
	core.KindBusinessRule:    http.StatusBadRequest,
	core.KindConflict:        http.StatusConflict,
	core.KindInternal:        http.StatusInternalServerError,
}

// statusFor resolves the HTTP status of a service error.
func statusFor(err error) int {
	if status, ok := statusByKind[core.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": message} for err. Only the localized message of
// a *core.Error reaches the client; everything else is logged.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	message := genericErrorMessage
	var svcErr *core.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("kind", core.KindOf(err).String()),
			zap.Error(err))
	} else {
		logger.Debug("Request rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}
