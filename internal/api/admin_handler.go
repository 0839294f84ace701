package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qacart-backend-go/internal/core"
	"qacart-backend-go/internal/models"
)

// AdminHandler serves the back-office user endpoints.
type AdminHandler struct {
	adminService core.AdminService
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(as core.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{adminService: as, logger: logger}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /admin/users/:userId.
func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.adminService.GetUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /admin/users/:userId.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	adminID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	if err := h.adminService.DeleteUser(c.Request.Context(), adminID, c.Param("userId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TogglePremium handles POST /admin/users/:userId/toggle-premium.
func (h *AdminHandler) TogglePremium(c *gin.Context) {
	adminID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	result, err := h.adminService.TogglePremium(c.Request.Context(), adminID, c.Param("userId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
