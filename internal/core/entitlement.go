package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"qacart-backend-go/internal/db"
	"qacart-backend-go/internal/models"
)

// giftDuration is the length of an admin-granted premium gift.
const giftDuration = 10 * 24 * time.Hour

// EntitlementChangedEvent is published whenever a user's subscription state is rewritten.
type EntitlementChangedEvent struct {
	UserID   string    `json:"userId"`
	Status   string    `json:"status"`
	Plan     string    `json:"plan,omitempty"`
	IsActive bool      `json:"isActive"`
	Source   string    `json:"source"` // webhook, admin_gift, gift_expiry
	At       time.Time `json:"at"`
}

// expireGiftIfElapsed rewrites an elapsed gift to the free state, updating
// user in place. It reports whether the record was changed.
func expireGiftIfElapsed(ctx context.Context, userRepo db.UserRepository, user *models.User, now time.Time) (bool, error) {
	if user == nil || !user.Subscription.GiftExpired(now) {
		return false, nil
	}
	free := models.FreeSubscription()
	if err := userRepo.ReplaceSubscription(ctx, user.ID, free); err != nil {
		return false, fmt.Errorf("failed to expire gift for user '%s': %w", user.ID, err)
	}
	user.Subscription = free
	return true, nil
}

// inferPlanFromLabel maps a price nickname onto a plan tier by keyword.
// It returns "" when no keyword matches.
func inferPlanFromLabel(label string) string {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "quarter"), strings.Contains(l, "3 month"), strings.Contains(l, "ربع"):
		return models.PlanQuarterly
	case strings.Contains(l, "year"), strings.Contains(l, "annual"), strings.Contains(l, "سنو"), strings.Contains(l, "سنة"):
		return models.PlanYearly
	case strings.Contains(l, "month"), strings.Contains(l, "شهر"):
		return models.PlanMonthly
	}
	return ""
}

func validPlanType(planType string) bool {
	switch planType {
	case models.PlanMonthly, models.PlanQuarterly, models.PlanYearly:
		return true
	}
	return false
}

// publishEvent sends a domain event, logging instead of failing on error.
func publishEvent(ctx context.Context, publisher EventPublisher, logger *zap.Logger, routingKey string, payload interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, routingKey, payload); err != nil {
		logger.Warn("Failed to publish domain event", zap.String("routingKey", routingKey), zap.Error(err))
	}
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

// Publish implements EventPublisher.
func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
