package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// internalErrorMessage is the generic localized message for unexpected failures.
const internalErrorMessage = "حدث خطأ غير متوقع، يرجى المحاولة لاحقاً"

// RecoveryMiddleware recovers from handler panics, logs the stack trace and
// answers 500 with the generic localized error body.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		panic("RecoveryMiddleware requires a non-nil zap.Logger instance")
	}
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("stacktrace", string(debug.Stack())),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("request_id", c.GetString("requestID")),
				)

				// Avoid a second WriteHeader when the handler already responded.
				if !c.Writer.Written() {
					c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
				}
				c.Abort()
			}
		}()

		c.Next()
	}
}
