package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qacart-backend-go/internal/core"
	"qacart-backend-go/internal/middleware"
)

// currentUserID returns the authenticated caller, answering 401 when absent.
func currentUserID(c *gin.Context, logger *zap.Logger) (string, bool) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		respondError(c, logger, core.ErrInvalidSession)
		return "", false
	}
	return userID, true
}

// bindJSON decodes the request body into dst, answering 400 on failure.
func bindJSON(c *gin.Context, logger *zap.Logger, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, logger, core.ErrInvalidInput)
		logger.Debug("Invalid request payload", zap.String("path", c.Request.URL.Path), zap.Error(err))
		return false
	}
	return true
}

