package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"qacart-backend-go/internal/models"
)

const plansCollection = "plans"

type firestorePlanRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestorePlanRepository creates a PlanRepository backed by Firestore.
func NewFirestorePlanRepository(client *firestore.Client, logger *zap.Logger) PlanRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for PlanRepository.")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &firestorePlanRepository{client: client, logger: logger}
}

// ListActive returns active plans ordered by their display order.
func (r *firestorePlanRepository) ListActive(ctx context.Context) ([]*models.Plan, error) {
	iter := r.client.Collection(plansCollection).Where("isActive", "==", true).Documents(ctx)
	defer iter.Stop()

	var plans []*models.Plan
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate plans: %w", err)
		}
		var plan models.Plan
		if err := doc.DataTo(&plan); err != nil {
			r.logger.Warn("Skipping undecodable plan", zap.String("planID", doc.Ref.ID), zap.Error(err))
			continue
		}
		plan.ID = doc.Ref.ID
		plans = append(plans, &plan)
	}
	sort.SliceStable(plans, func(i, j int) bool { return plans[i].Order < plans[j].Order })
	return plans, nil
}

// Save creates or replaces the plan document under plan.ID.
func (r *firestorePlanRepository) Save(ctx context.Context, plan *models.Plan) error {
	if plan.ID == "" {
		return errors.New("plan ID cannot be empty for Save operation")
	}
	if _, err := r.client.Collection(plansCollection).Doc(plan.ID).Set(ctx, plan); err != nil {
		return fmt.Errorf("failed to save plan '%s': %w", plan.ID, err)
	}
	return nil
}

func (r *firestorePlanRepository) Delete(ctx context.Context, planID string) error {
	if _, err := r.client.Collection(plansCollection).Doc(planID).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("plan '%s' not found: %w", planID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete plan '%s': %w", planID, err)
	}
	return nil
}
