package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qacart-backend-go/internal/core"
	"qacart-backend-go/internal/middleware"
	"qacart-backend-go/internal/models"
)

// CourseHandler serves the catalog and the admin course/lesson CRUD.
type CourseHandler struct {
	courseService core.CourseService
	userService   core.UserService
	logger        *zap.Logger
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(cs core.CourseService, us core.UserService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{courseService: cs, userService: us, logger: logger}
}

// viewer resolves the optional caller. Anonymous or unknown callers yield nil.
func (h *CourseHandler) viewer(c *gin.Context) *models.User {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		return nil
	}
	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		if core.KindOf(err) != core.KindNotFound {
			h.logger.Warn("Failed to resolve course viewer", zap.String("userID", userID), zap.Error(err))
		}
		return nil
	}
	return user
}

// ListCourses handles GET /courses. Drafts are included for admins.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.ListCourses(c.Request.Context(), h.viewer(c).IsAdmin())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

// GetCourse handles GET /courses/:courseId.
func (h *CourseHandler) GetCourse(c *gin.Context) {
	detail, err := h.courseService.GetCourse(c.Request.Context(), c.Param("courseId"), h.viewer(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CreateCourse handles POST /admin/courses.
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	adminID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	var req models.CreateCourseRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	course, err := h.courseService.CreateCourse(c.Request.Context(), adminID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

// UpdateCourse handles PUT /admin/courses/:courseId.
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	adminID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	var req models.UpdateCourseRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	course, err := h.courseService.UpdateCourse(c.Request.Context(), adminID, c.Param("courseId"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// DeleteCourse handles DELETE /admin/courses/:courseId.
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	adminID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	if err := h.courseService.DeleteCourse(c.Request.Context(), adminID, c.Param("courseId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateLesson handles POST /admin/courses/:courseId/lessons.
func (h *CourseHandler) CreateLesson(c *gin.Context) {
	adminID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	var req models.CreateLessonRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	lesson, err := h.courseService.CreateLesson(c.Request.Context(), adminID, c.Param("courseId"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

// UpdateLesson handles PUT /admin/courses/:courseId/lessons/:lessonId.
func (h *CourseHandler) UpdateLesson(c *gin.Context) {
	adminID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	var req models.UpdateLessonRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	lesson, err := h.courseService.UpdateLesson(c.Request.Context(), adminID, c.Param("courseId"), c.Param("lessonId"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

// DeleteLesson handles DELETE /admin/courses/:courseId/lessons/:lessonId.
func (h *CourseHandler) DeleteLesson(c *gin.Context) {
	adminID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	if err := h.courseService.DeleteLesson(c.Request.Context(), adminID, c.Param("courseId"), c.Param("lessonId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
