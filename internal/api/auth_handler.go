package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qacart-backend-go/internal/core"
	"qacart-backend-go/internal/middleware"
	"qacart-backend-go/internal/models"
)

// AuthHandler exchanges Firebase ID tokens for session cookies and
// initializes user profiles.
type AuthHandler struct {
	userService    core.UserService
	sessionService core.SessionService
	secureCookie   bool
	logger         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(us core.UserService, ss core.SessionService, secureCookie bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{userService: us, sessionService: ss, secureCookie: secureCookie, logger: logger}
}

// CreateSession handles POST /api/v1/auth/session.
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	cookie, expiresIn, err := h.sessionService.CreateSession(c.Request.Context(), req.IDToken)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, cookie, int(expiresIn.Seconds()), "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, SessionResponse{Status: "success", ExpiresIn: int64(expiresIn.Seconds())})
}

// DeleteSession handles DELETE /api/v1/auth/session. The cookie is cleared
// even when it no longer verifies.
func (h *AuthHandler) DeleteSession(c *gin.Context) {
	cookie, _ := c.Cookie(middleware.SessionCookieName)
	if err := h.sessionService.RevokeSession(c.Request.Context(), cookie); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, SessionResponse{Status: "success"})
}

// InitializeUserProfile handles POST /api/v1/users/initialize.
// Called after a client-side Firebase sign-in to make sure the profile exists.
func (h *AuthHandler) InitializeUserProfile(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}
	email := c.GetString(middleware.ContextUserEmail)
	displayName := c.GetString(middleware.ContextUserDisplayName)
	photoURL := c.GetString(middleware.ContextUserPhotoURL)

	user, created, err := h.userService.GetOrCreate(c.Request.Context(), userID, email, displayName, photoURL)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if created {
		c.JSON(http.StatusCreated, user)
		return
	}
	c.JSON(http.StatusOK, user)
}
