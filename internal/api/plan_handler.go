package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qacart-backend-go/internal/core"
	"qacart-backend-go/internal/models"
)

// PlanHandler serves the subscription plan catalog.
type PlanHandler struct {
	planService core.PlanService
	logger      *zap.Logger
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(ps core.PlanService, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{planService: ps, logger: logger}
}

// ListPlans handles GET /plans.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.planService.ListPlans(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if plans == nil {
		plans = []*models.Plan{}
	}
	c.JSON(http.StatusOK, plans)
}

// SavePlan handles PUT /admin/plans/:planId.
func (h *PlanHandler) SavePlan(c *gin.Context) {
	adminID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	var req models.SavePlanRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	plan, err := h.planService.SavePlan(c.Request.Context(), adminID, c.Param("planId"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// DeletePlan handles DELETE /admin/plans/:planId.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	adminID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	if err := h.planService.DeletePlan(c.Request.Context(), adminID, c.Param("planId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
