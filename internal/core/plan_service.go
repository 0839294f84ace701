package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"qacart-backend-go/internal/db"
	"qacart-backend-go/internal/models"
)

type planService struct {
	planRepo     db.PlanRepository
	cache        PlanCache
	auditService AuditService
	logger       *zap.Logger
}

// NewPlanService creates a PlanService. cache may be nil.
func NewPlanService(planRepo db.PlanRepository, cache PlanCache, auditService AuditService, logger *zap.Logger) PlanService {
	return &planService{
		planRepo:     planRepo,
		cache:        cache,
		auditService: auditService,
		logger:       logger,
	}
}

// ListPlans returns the active plan catalog, served from cache when possible.
func (s *planService) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	if s.cache != nil {
		plans, ok, err := s.cache.GetPlans(ctx)
		if err != nil {
			s.logger.Warn("Plan cache read failed, falling back to Firestore", zap.Error(err))
		} else if ok {
			return plans, nil
		}
	}

	plans, err := s.planRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	if plans == nil {
		plans = []*models.Plan{}
	}
	if s.cache != nil {
		if err := s.cache.SetPlans(ctx, plans); err != nil {
			s.logger.Warn("Plan cache write failed", zap.Error(err))
		}
	}
	return plans, nil
}

// FindByPriceID returns the active plan backed by priceID.
func (s *planService) FindByPriceID(ctx context.Context, priceID string) (*models.Plan, error) {
	plans, err := s.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range plans {
		if p.StripePriceID == priceID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: price '%s'", ErrPlanNotFound, priceID)
}

// SavePlan creates or replaces the plan stored under planID.
func (s *planService) SavePlan(ctx context.Context, adminID, planID string, req models.SavePlanRequest) (*models.Plan, error) {
	planID = strings.TrimSpace(planID)
	if planID == "" || strings.TrimSpace(req.Name) == "" || req.StripePriceID == "" || req.Amount < 0 {
		return nil, ErrInvalidInput
	}
	if !validPlanType(req.Type) {
		return nil, ErrInvalidPlanType
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = "usd"
	}
	plan := &models.Plan{
		ID:            planID,
		Name:          strings.TrimSpace(req.Name),
		NameEn:        req.NameEn,
		Type:          req.Type,
		StripePriceID: req.StripePriceID,
		Amount:        req.Amount,
		Currency:      currency,
		Features:      req.Features,
		IsActive:      req.IsActive,
		Order:         req.Order,
	}
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save plan '%s': %w", planID, err)
	}
	s.invalidate(ctx)

	s.logger.Info("Plan saved", zap.String("adminID", adminID), zap.String("planID", planID))
	recordAudit(ctx, s.auditService, s.logger, adminID, models.AuditPlanSaved, "PLAN", planID, map[string]interface{}{
		"stripePriceId": plan.StripePriceID,
		"isActive":      plan.IsActive,
	})
	return plan, nil
}

// DeletePlan removes a plan from the catalog.
func (s *planService) DeletePlan(ctx context.Context, adminID, planID string) error {
	if strings.TrimSpace(planID) == "" {
		return ErrInvalidInput
	}
	if err := s.planRepo.Delete(ctx, planID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: plan '%s'", ErrPlanMissing, planID)
		}
		return fmt.Errorf("failed to delete plan '%s': %w", planID, err)
	}
	s.invalidate(ctx)

	s.logger.Info("Plan deleted", zap.String("adminID", adminID), zap.String("planID", planID))
	recordAudit(ctx, s.auditService, s.logger, adminID, models.AuditPlanDeleted, "PLAN", planID, nil)
	return nil
}

func (s *planService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Plan cache invalidation failed", zap.Error(err))
	}
}
