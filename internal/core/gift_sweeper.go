package core

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"qacart-backend-go/internal/db"
	"qacart-backend-go/internal/models"
)

// GiftExpirySweeper periodically downgrades users whose premium gift has elapsed.
// It complements the on-read expiry done by the user and admin services.
type GiftExpirySweeper struct {
	userRepo  db.UserRepository
	publisher EventPublisher
	logger    *zap.Logger
	cron      *cron.Cron
	now       func() time.Time
}

// NewGiftExpirySweeper creates a sweeper. Call Start to schedule it.
func NewGiftExpirySweeper(userRepo db.UserRepository, publisher EventPublisher, logger *zap.Logger) *GiftExpirySweeper {
	return &GiftExpirySweeper{
		userRepo:  userRepo,
		publisher: publisher,
		logger:    logger.Named("gift-sweeper"),
		cron:      cron.New(cron.WithLocation(time.UTC)),
		now:       time.Now,
	}
}

// Start schedules the sweep with a standard cron expression or descriptor
// such as "@hourly".
func (s *GiftExpirySweeper) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("Gift expiry sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid gift sweep schedule '%s': %w", schedule, err)
	}
	s.cron.Start()
	s.logger.Info("Gift expiry sweeper started", zap.String("schedule", schedule))
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish or ctx to end.
func (s *GiftExpirySweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Gift expiry sweeper did not stop in time")
	}
}

// Sweep downgrades every user with an elapsed gift and returns how many were changed.
// A failure on one user is logged and the sweep continues.
func (s *GiftExpirySweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	users, err := s.userRepo.ListWithExpiredGifts(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list users with expired gifts: %w", err)
	}

	expiredCount := 0
	for _, u := range users {
		expired, err := expireGiftIfElapsed(ctx, s.userRepo, u, now)
		if err != nil {
			s.logger.Warn("Failed to expire gift", zap.String("userID", u.ID), zap.Error(err))
			continue
		}
		if !expired {
			continue
		}
		expiredCount++
		publishEvent(ctx, s.publisher, s.logger, EventEntitlementChanged, EntitlementChangedEvent{
			UserID: u.ID, Status: models.SubscriptionStatusFree, Source: "gift_expiry", At: now.UTC(),
		})
	}
	if expiredCount > 0 {
		s.logger.Info("Expired premium gifts downgraded", zap.Int("count", expiredCount))
	}
	return expiredCount, nil
}
