package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qacart-backend-go/internal/core"
	"qacart-backend-go/internal/models"
)

// ProgressHandler tracks lesson completion for the caller.
type ProgressHandler struct {
	progressService core.ProgressService
	logger          *zap.Logger
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(ps core.ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{progressService: ps, logger: logger}
}

// MarkLessonComplete handles POST /progress/complete.
func (h *ProgressHandler) MarkLessonComplete(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	var req models.MarkLessonCompleteRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	update, err := h.progressService.MarkLessonComplete(c.Request.Context(), userID, req.CourseID, req.LessonID, req.TotalLessons, req.TimeSpent)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, update)
}

// GetProgress handles GET /progress/:courseId.
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	progress, err := h.progressService.GetProgress(c.Request.Context(), userID, c.Param("courseId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// ListProgress handles GET /progress.
func (h *ProgressHandler) ListProgress(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	records, err := h.progressService.ListProgress(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if records == nil {
		records = []*models.UserProgress{}
	}
	c.JSON(http.StatusOK, records)
}
