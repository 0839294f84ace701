package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"qacart-backend-go/internal/db"
	"qacart-backend-go/internal/models"
)

// Gift toggle outcomes.
const (
	GiftActionGranted = "granted"
	GiftActionRevoked = "revoked"
)

// GiftToggleResult is the outcome of TogglePremium.
type GiftToggleResult struct {
	Action string       `json:"action"`
	User   *models.User `json:"user"`
}

type adminService struct {
	userRepo     db.UserRepository
	progressRepo db.ProgressRepository
	certRepo     db.CertificateRepository
	identity     IdentityProvider
	auditService AuditService
	publisher    EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewAdminService creates the back-office service.
func NewAdminService(
	userRepo db.UserRepository,
	progressRepo db.ProgressRepository,
	certRepo db.CertificateRepository,
	identity IdentityProvider,
	auditService AuditService,
	publisher EventPublisher,
	logger *zap.Logger,
) AdminService {
	return &adminService{
		userRepo:     userRepo,
		progressRepo: progressRepo,
		certRepo:     certRepo,
		identity:     identity,
		auditService: auditService,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// ListUsers returns all users, downgrading any elapsed gifts on the way.
func (s *adminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	now := s.now()
	for _, u := range users {
		s.expireLazily(ctx, u, now)
	}
	return users, nil
}

// GetUser returns a single user, downgrading an elapsed gift on the way.
func (s *adminService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.expireLazily(ctx, user, s.now())
	return user, nil
}

func (s *adminService) expireLazily(ctx context.Context, user *models.User, now time.Time) {
	expired, err := expireGiftIfElapsed(ctx, s.userRepo, user, now)
	if err != nil {
		s.logger.Warn("Lazy gift expiry failed", zap.String("userID", user.ID), zap.Error(err))
		return
	}
	if expired {
		s.logger.Info("Expired premium gift downgraded on read", zap.String("userID", user.ID))
		publishEvent(ctx, s.publisher, s.logger, EventEntitlementChanged, EntitlementChangedEvent{
			UserID: user.ID, Status: models.SubscriptionStatusFree, Source: "gift_expiry", At: now.UTC(),
		})
	}
}

func (s *adminService) loadUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", userID, err)
	}
	return user, nil
}

// TogglePremium grants a premium gift to a user without one, or revokes the
// existing gift. Either way the whole subscription sub-object is replaced.
func (s *adminService) TogglePremium(ctx context.Context, adminID, userID string) (*GiftToggleResult, error) {
	if adminID == userID {
		return nil, ErrCannotModifySelf
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var (
		sub    models.Subscription
		action string
		audit  string
	)
	if user.Subscription.GiftDetails != nil {
		sub = models.FreeSubscription()
		action = GiftActionRevoked
		audit = models.AuditPremiumRevoked
	} else {
		expiresAt := now.Add(giftDuration)
		sub = models.Subscription{
			Status:          models.SubscriptionStatusPremium,
			Plan:            models.PlanMonthly,
			IsActive:        true,
			NextBillingDate: &expiresAt,
			GiftDetails: &models.GiftDetails{
				GrantedAt: now,
				ExpiresAt: expiresAt,
				Type:      models.GiftTypeAdmin,
			},
		}
		action = GiftActionGranted
		audit = models.AuditPremiumGranted
	}

	if err := s.userRepo.ReplaceSubscription(ctx, userID, sub); err != nil {
		return nil, fmt.Errorf("failed to %s premium gift for user '%s': %w", action, userID, err)
	}
	user.Subscription = sub

	s.logger.Info("Premium gift toggled",
		zap.String("adminID", adminID),
		zap.String("userID", userID),
		zap.String("action", action),
	)
	details := map[string]interface{}{"action": action}
	if sub.GiftDetails != nil {
		details["expiresAt"] = sub.GiftDetails.ExpiresAt
	}
	recordAudit(ctx, s.auditService, s.logger, adminID, audit, "USER", userID, details)
	publishEvent(ctx, s.publisher, s.logger, EventEntitlementChanged, EntitlementChangedEvent{
		UserID: userID, Status: sub.Status, Plan: sub.Plan, IsActive: sub.IsActive, Source: models.GiftTypeAdmin, At: now,
	})

	return &GiftToggleResult{Action: action, User: user}, nil
}

// DeleteUser removes the identity account and every document owned by the user.
func (s *adminService) DeleteUser(ctx context.Context, adminID, userID string) error {
	if adminID == userID {
		return ErrCannotModifySelf
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	if s.identity != nil {
		if err := s.identity.DeleteUser(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete auth account '%s': %w", userID, err)
		}
	}
	if err := s.progressRepo.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete progress of user '%s': %w", userID, err)
	}
	if err := s.certRepo.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete certificates of user '%s': %w", userID, err)
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user document '%s': %w", userID, err)
	}

	s.logger.Info("User deleted", zap.String("adminID", adminID), zap.String("userID", userID))
	recordAudit(ctx, s.auditService, s.logger, adminID, models.AuditUserDeleted, "USER", userID, map[string]interface{}{
		"email": user.Email,
	})
	return nil
}
