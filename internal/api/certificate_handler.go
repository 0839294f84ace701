package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qacart-backend-go/internal/core"
	"qacart-backend-go/internal/models"
)

// CertificateHandler issues, lists, verifies and revokes certificates.
type CertificateHandler struct {
	certificateService core.CertificateService
	logger             *zap.Logger
}

// NewCertificateHandler creates a new CertificateHandler.
func NewCertificateHandler(cs core.CertificateService, logger *zap.Logger) *CertificateHandler {
	return &CertificateHandler{certificateService: cs, logger: logger}
}

// IssueCertificate handles POST /certificates.
func (h *CertificateHandler) IssueCertificate(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	var req models.IssueCertificateRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	cert, err := h.certificateService.IssueCertificate(c.Request.Context(), userID, req.CourseID, req.StudentName)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, cert)
}

// ListCertificates handles GET /certificates.
func (h *CertificateHandler) ListCertificates(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	certs, err := h.certificateService.ListUserCertificates(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if certs == nil {
		certs = []*models.Certificate{}
	}
	c.JSON(http.StatusOK, certs)
}

// VerifyCertificate handles GET /certificates/verify/:code. Public.
func (h *CertificateHandler) VerifyCertificate(c *gin.Context) {
	result, err := h.certificateService.VerifyCertificateByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RevokeCertificate handles POST /admin/certificates/:certificateId/revoke.
func (h *CertificateHandler) RevokeCertificate(c *gin.Context) {
	adminID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	cert, err := h.certificateService.RevokeCertificate(c.Request.Context(), adminID, c.Param("certificateId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}
