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

// billingService implements BillingService on top of a PaymentGateway.
type billingService struct {
	userRepo    db.UserRepository
	planService PlanService
	gateway     PaymentGateway
	publisher   EventPublisher
	clientURL   string
	logger      *zap.Logger
	now         func() time.Time
}

// NewBillingService creates a BillingService. clientURL is the frontend base URL
// used for checkout success/cancel and portal return redirects.
func NewBillingService(
	userRepo db.UserRepository,
	planService PlanService,
	gateway PaymentGateway,
	publisher EventPublisher,
	clientURL string,
	logger *zap.Logger,
) BillingService {
	return &billingService{
		userRepo:    userRepo,
		planService: planService,
		gateway:     gateway,
		publisher:   publisher,
		clientURL:   clientURL,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateCheckoutSession validates the price against the plan catalog, creates
// the Stripe customer on first use and opens a hosted subscription checkout.
func (s *billingService) CreateCheckoutSession(ctx context.Context, userID, priceID string) (*models.CheckoutSession, error) {
	if priceID == "" {
		return nil, ErrInvalidInput
	}
	plan, err := s.planService.FindByPriceID(ctx, priceID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load user '%s' for checkout: %w", userID, err)
	}
	if user.Subscription.HasActivePaidSubscription() {
		return nil, ErrAlreadySubscribed
	}

	customerID := user.StripeCustomerID
	if customerID == "" {
		customerID, err = s.gateway.CreateCustomer(ctx, user.ID, user.Email, user.DisplayName)
		if err != nil {
			s.logger.Error("Stripe customer creation failed", zap.String("userID", userID), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
		}
		if err := s.userRepo.SetStripeCustomerID(ctx, user.ID, customerID); err != nil {
			s.logger.Error("Failed to persist Stripe customer ID", zap.String("userID", userID), zap.String("customerID", customerID), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
		}
		s.logger.Info("Stripe customer created", zap.String("userID", userID), zap.String("customerID", customerID))
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, models.CheckoutSessionParams{
		CustomerID: customerID,
		PriceID:    priceID,
		SuccessURL: s.clientURL + "/profile?checkout=success&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.clientURL + "/pricing?checkout=cancelled",
		Metadata: map[string]string{
			"userId":   user.ID,
			"planType": plan.Type,
		},
	})
	if err != nil {
		s.logger.Error("Stripe checkout session creation failed", zap.String("userID", userID), zap.String("priceID", priceID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}
	s.logger.Info("Checkout session created", zap.String("userID", userID), zap.String("sessionID", session.ID))
	return session, nil
}

// CreatePortalSession opens a Stripe billing portal session for the user's customer.
func (s *billingService) CreatePortalSession(ctx context.Context, userID string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return "", fmt.Errorf("failed to load user '%s' for portal: %w", userID, err)
	}
	if user.StripeCustomerID == "" {
		return "", fmt.Errorf("%w for user %s", ErrNoBillingAccount, userID)
	}

	url, err := s.gateway.CreatePortalSession(ctx, user.StripeCustomerID, s.clientURL+"/profile")
	if err != nil {
		s.logger.Error("Stripe portal session creation failed", zap.String("userID", userID), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrPortalFailed, err)
	}
	return url, nil
}

// HandleStripeWebhook verifies and dispatches a Stripe event.
// Only a signature failure is returned to the caller; processing failures are
// logged and swallowed so Stripe does not redeliver a deterministic failure.
func (s *billingService) HandleStripeWebhook(ctx context.Context, signature string, payload []byte) error {
	event, err := s.gateway.ParseWebhookEvent(payload, signature)
	if event == nil {
		if err == nil {
			err = errors.New("no event returned")
		}
		s.logger.Warn("Stripe webhook signature verification failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}

	logger := s.logger.With(zap.String("eventID", event.ID), zap.String("eventType", event.Type))
	if err != nil {
		logger.Error("Stripe webhook event could not be decoded", zap.Error(err))
		return nil
	}
	logger.Info("Stripe webhook received")

	switch event.Type {
	case models.EventCheckoutSessionCompleted:
		err = s.handleCheckoutCompleted(ctx, event)
	case models.EventSubscriptionCreated, models.EventSubscriptionUpdated:
		err = s.handleSubscriptionChanged(ctx, event)
	case models.EventSubscriptionDeleted:
		err = s.handleSubscriptionDeleted(ctx, event)
	default:
		logger.Debug("Unhandled Stripe event type ignored")
		return nil
	}

	if err != nil {
		logger.Error("Stripe webhook processing failed", zap.Error(err))
	}
	return nil
}

func (s *billingService) handleCheckoutCompleted(ctx context.Context, event *models.WebhookEvent) error {
	session := event.CheckoutSession
	if session == nil {
		return errors.New("checkout event carries no session")
	}
	userID := session.Metadata["userId"]
	if userID == "" {
		return fmt.Errorf("checkout session '%s' has no userId metadata", session.ID)
	}
	if session.SubscriptionID == "" {
		return fmt.Errorf("checkout session '%s' has no subscription", session.ID)
	}

	sub, err := s.gateway.GetSubscription(ctx, session.SubscriptionID)
	if err != nil {
		return fmt.Errorf("failed to fetch subscription '%s': %w", session.SubscriptionID, err)
	}
	return s.reconcile(ctx, userID, sub)
}

func (s *billingService) handleSubscriptionChanged(ctx context.Context, event *models.WebhookEvent) error {
	if event.Subscription == nil {
		return errors.New("subscription event carries no subscription")
	}
	user, err := s.userRepo.FindByStripeCustomerID(ctx, event.Subscription.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to resolve user for customer '%s': %w", event.Subscription.CustomerID, err)
	}
	return s.reconcile(ctx, user.ID, event.Subscription)
}

func (s *billingService) handleSubscriptionDeleted(ctx context.Context, event *models.WebhookEvent) error {
	if event.Subscription == nil {
		return errors.New("subscription event carries no subscription")
	}
	user, err := s.userRepo.FindByStripeCustomerID(ctx, event.Subscription.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to resolve user for customer '%s': %w", event.Subscription.CustomerID, err)
	}

	status := models.SubscriptionStatusFree
	active := false
	patch := models.SubscriptionPatch{Status: &status, IsActive: &active}
	if subStatus := event.Subscription.Status; subStatus != "" {
		patch.StripeStatus = &subStatus
	}
	if err := s.userRepo.PatchSubscription(ctx, user.ID, patch); err != nil {
		return err
	}
	s.logger.Info("Subscription deleted; entitlement downgraded", zap.String("userID", user.ID))
	publishEvent(ctx, s.publisher, s.logger, EventEntitlementChanged, EntitlementChangedEvent{
		UserID: user.ID, Status: status, IsActive: false, Source: "webhook", At: s.now().UTC(),
	})
	return nil
}

// reconcile overwrites the user's subscription fields with the processor's state.
// Every field is written absolutely, so replaying an event is harmless.
func (s *billingService) reconcile(ctx context.Context, userID string, sub *models.ProcessorSubscription) error {
	patch := BuildSubscriptionPatch(sub)
	if err := s.userRepo.PatchSubscription(ctx, userID, patch); err != nil {
		return fmt.Errorf("failed to reconcile subscription for user '%s': %w", userID, err)
	}

	plan := ""
	if patch.Plan != nil {
		plan = *patch.Plan
	}
	s.logger.Info("Subscription reconciled",
		zap.String("userID", userID),
		zap.String("subscriptionID", sub.ID),
		zap.String("stripeStatus", sub.Status),
		zap.String("plan", plan),
	)
	publishEvent(ctx, s.publisher, s.logger, EventEntitlementChanged, EntitlementChangedEvent{
		UserID: userID, Status: *patch.Status, Plan: plan, IsActive: *patch.IsActive, Source: "webhook", At: s.now().UTC(),
	})
	return nil
}

// BuildSubscriptionPatch maps a processor subscription onto entitlement fields.
// Period end fields are only written for active subscriptions; plan is left
// untouched when the price label names no known tier.
func BuildSubscriptionPatch(sub *models.ProcessorSubscription) models.SubscriptionPatch {
	isActive := sub.Status == "active"
	status := models.SubscriptionStatusFree
	if isActive {
		status = models.SubscriptionStatusPremium
	}

	subID := sub.ID
	priceID := sub.PriceID
	stripeStatus := sub.Status
	patch := models.SubscriptionPatch{
		Status:               &status,
		IsActive:             &isActive,
		StripeSubscriptionID: &subID,
		StripePriceID:        &priceID,
		StripeStatus:         &stripeStatus,
	}
	if plan := inferPlanFromLabel(sub.PriceLabel); plan != "" {
		patch.Plan = &plan
	}
	if isActive {
		cancel := sub.CancelAtPeriodEnd
		periodEnd := sub.CurrentPeriodEnd.UTC()
		nextBilling := periodEnd
		patch.CancelAtPeriodEnd = &cancel
		patch.CurrentPeriodEnd = &periodEnd
		patch.NextBillingDate = &nextBilling
	}
	return patch
}
