package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"qacart-backend-go/internal/db"
	"qacart-backend-go/internal/models"
)

// userService implements the UserService interface.
type userService struct {
	userRepo    db.UserRepository
	adminEmails map[string]bool
	logger      *zap.Logger
	now         func() time.Time
}

// NewUserService creates a new UserService instance.
// Users signing up with an email in adminEmails are created with the admin role.
func NewUserService(userRepo db.UserRepository, adminEmails []string, logger *zap.Logger) UserService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(e)] = true
	}
	return &userService{
		userRepo:    userRepo,
		adminEmails: admins,
		logger:      logger,
		now:         time.Now,
	}
}

// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates a new one
// with a free, inactive entitlement.
// Returns the user, a boolean indicating if the user was created, and an error if any.
func (s *userService) GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error) {
	user, err := s.GetByID(ctx, userID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	role := models.RoleUser
	if s.adminEmails[strings.ToLower(email)] {
		role = models.RoleAdmin
	}
	now := s.now().UTC()
	newUser := &models.User{
		ID:           userID, // User ID from Firebase Auth is the document ID
		Email:        email,
		DisplayName:  displayName,
		PhotoURL:     photoURL,
		Role:         role,
		Subscription: models.FreeSubscription(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, false, fmt.Errorf("failed to create user (id: %s) after not found: %w", userID, err)
	}
	s.logger.Info("User profile created", zap.String("userID", userID), zap.String("role", role))
	return newUser, true, nil
}

// GetByID retrieves a user by their ID. An elapsed gift is downgraded before returning.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}

	if expired, err := expireGiftIfElapsed(ctx, s.userRepo, user, s.now()); err != nil {
		s.logger.Warn("Lazy gift expiry failed", zap.String("userID", userID), zap.Error(err))
	} else if expired {
		s.logger.Info("Expired premium gift downgraded on read", zap.String("userID", userID))
	}
	return user, nil
}
