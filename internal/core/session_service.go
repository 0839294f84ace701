package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SessionDuration is the lifetime of a session cookie.
const SessionDuration = 5 * 24 * time.Hour

type sessionService struct {
	identity IdentityProvider
	logger   *zap.Logger
}

// NewSessionService creates a SessionService.
func NewSessionService(identity IdentityProvider, logger *zap.Logger) SessionService {
	return &sessionService{identity: identity, logger: logger}
}

// CreateSession exchanges a freshly minted ID token for a session cookie.
func (s *sessionService) CreateSession(ctx context.Context, idToken string) (string, time.Duration, error) {
	if idToken == "" {
		return "", 0, ErrInvalidInput
	}
	cookie, err := s.identity.CreateSessionCookie(ctx, idToken, SessionDuration)
	if err != nil {
		s.logger.Warn("Session cookie creation failed", zap.Error(err))
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return cookie, SessionDuration, nil
}

// RevokeSession revokes the refresh tokens of the cookie's owner. An invalid or
// already expired cookie is treated as signed out.
func (s *sessionService) RevokeSession(ctx context.Context, sessionCookie string) error {
	if sessionCookie == "" {
		return nil
	}
	uid, err := s.identity.VerifySessionCookie(ctx, sessionCookie)
	if err != nil {
		s.logger.Debug("Ignoring invalid session cookie on sign-out", zap.Error(err))
		return nil
	}
	if err := s.identity.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens for user '%s': %w", uid, err)
	}
	s.logger.Info("Session revoked", zap.String("userID", uid))
	return nil
}
