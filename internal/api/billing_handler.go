package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qacart-backend-go/internal/core"
	"qacart-backend-go/internal/models"
)

// maxWebhookBodyBytes bounds the Stripe event payload read into memory.
const maxWebhookBodyBytes = 1 << 20

// BillingHandler handles billing-related API endpoints.
type BillingHandler struct {
	billingService core.BillingService
	logger         *zap.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(bs core.BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{billingService: bs, logger: logger}
}

// CreateCheckoutSession handles POST /billing/create-checkout-session
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	var req models.CreateCheckoutSessionRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	session, err := h.billingService.CreateCheckoutSession(c.Request.Context(), userID, req.PriceID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// CreatePortalSession handles POST /billing/create-portal-session
func (h *BillingHandler) CreatePortalSession(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}

	portalURL, err := h.billingService.CreatePortalSession(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, PortalSessionResponse{URL: portalURL})
}

// HandleStripeWebhook handles POST /billing/webhooks/stripe.
// The raw body is required for signature verification. Only a bad signature
// is answered with 400; everything else is acknowledged so Stripe stops redelivering.
func (h *BillingHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Error("Failed to read Stripe webhook payload", zap.Error(err))
		respondError(c, h.logger, core.ErrInvalidInput)
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.billingService.HandleStripeWebhook(c.Request.Context(), signature, payload); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, WebhookAck{Received: true})
}
