package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qacart-backend-go/internal/core"
	"qacart-backend-go/internal/identity"
	"qacart-backend-go/internal/models"
)

// SessionCookieName is the HTTP-only cookie holding the Firebase session.
const SessionCookieName = "session"

// Gin context keys set by the auth middleware.
const (
	ContextUserID          = "userID"
	ContextUserEmail       = "userEmail"
	ContextUserDisplayName = "userDisplayName"
	ContextUserPhotoURL    = "userPhotoURL"
	ContextUser            = "user"
)

// TokenVerifier verifies the credentials a client can present.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*identity.Claims, error)
	VerifySession(ctx context.Context, sessionCookie string) (*identity.Claims, error)
}

// UserLookup resolves the stored profile of an authenticated user.
type UserLookup interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

var errNoCredentials = errors.New("no credentials presented")

// AuthMiddleware provides Gin middleware for Firebase authentication.
type AuthMiddleware struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil {
		panic("AuthMiddleware requires a token verifier")
	}
	return &AuthMiddleware{verifier: verifier, logger: logger}
}

// RequireAuth rejects requests without a valid Bearer ID token or session cookie.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.authenticate(c)
		if err != nil {
			if !errors.Is(err, errNoCredentials) {
				m.logger.Debug("Credential verification failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": core.ErrInvalidSession.Message})
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth sets the user claims when valid credentials are presented and
// lets anonymous requests through otherwise.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := m.authenticate(c); err == nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth. It loads the caller's profile and
// rejects non-admins with 403. The profile is stored under ContextUser.
func (m *AuthMiddleware) RequireAdmin(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": core.ErrInvalidSession.Message})
			return
		}
		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if core.KindOf(err) != core.KindNotFound {
				m.logger.Error("Failed to load caller for admin check", zap.String("userID", userID), zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": core.ErrAdminOnly.Message})
			return
		}
		if !user.IsAdmin() {
			m.logger.Warn("Non-admin attempted admin route", zap.String("userID", userID), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": core.ErrAdminOnly.Message})
			return
		}
		c.Set(ContextUser, user)
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context) (*identity.Claims, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return nil, errors.New("malformed Authorization header")
		}
		return m.verifier.VerifyIDToken(c.Request.Context(), parts[1])
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return m.verifier.VerifySession(c.Request.Context(), cookie)
	}
	return nil, errNoCredentials
}

func setClaims(c *gin.Context, claims *identity.Claims) {
	c.Set(ContextUserID, claims.UID)
	if claims.Email != "" {
		c.Set(ContextUserEmail, claims.Email)
	}
	if claims.DisplayName != "" {
		c.Set(ContextUserDisplayName, claims.DisplayName)
	}
	if claims.PhotoURL != "" {
		c.Set(ContextUserPhotoURL, claims.PhotoURL)
	}
}
