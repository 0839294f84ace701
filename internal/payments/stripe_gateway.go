// Package payments implements the payment gateway on top of the Stripe API.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"qacart-backend-go/internal/models"
)

// StripeGateway implements core.PaymentGateway.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	logger        *zap.Logger
}

// NewStripeGateway creates a gateway with its own Stripe client; no global key is set.
func NewStripeGateway(secretKey, webhookSecret string, logger *zap.Logger) *StripeGateway {
	return &StripeGateway{
		api:           client.New(secretKey, nil),
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// CreateCustomer creates a Stripe customer tagged with the platform user ID.
func (g *StripeGateway) CreateCustomer(ctx context.Context, userID, email, name string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	params.AddMetadata("userId", userID)
	params.Context = ctx

	cust, err := g.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create customer for user '%s': %w", userID, err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession opens a hosted checkout session in subscription mode.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p models.CheckoutSessionParams) (*models.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(p.CustomerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(p.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: p.Metadata,
		},
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return &models.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// CreatePortalSession opens a billing portal session and returns its URL.
func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := g.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create portal session for customer '%s': %w", customerID, err)
	}
	return sess.URL, nil
}

// GetSubscription fetches a subscription with its price details.
func (g *StripeGateway) GetSubscription(ctx context.Context, subscriptionID string) (*models.ProcessorSubscription, error) {
	params := &stripe.SubscriptionParams{}
	params.AddExpand("items.data.price")
	params.Context = ctx

	sub, err := g.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: get subscription '%s': %w", subscriptionID, err)
	}
	return toProcessorSubscription(sub), nil
}

// ParseWebhookEvent verifies the Stripe-Signature header and decodes the
// objects of the event types the platform reconciles. A nil event means the
// signature was rejected; a verified event whose object cannot be decoded is
// returned together with the decode error.
func (g *StripeGateway) ParseWebhookEvent(payload []byte, signature string) (*models.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}

	out := &models.WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case models.EventCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return out, fmt.Errorf("decode checkout session of event '%s': %w", event.ID, err)
		}
		out.CheckoutSession = &models.CheckoutSessionEvent{
			ID:       sess.ID,
			Metadata: sess.Metadata,
		}
		if sess.Customer != nil {
			out.CheckoutSession.CustomerID = sess.Customer.ID
		}
		if sess.Subscription != nil {
			out.CheckoutSession.SubscriptionID = sess.Subscription.ID
		}
	case models.EventSubscriptionCreated, models.EventSubscriptionUpdated, models.EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return out, fmt.Errorf("decode subscription of event '%s': %w", event.ID, err)
		}
		out.Subscription = toProcessorSubscription(&sub)
	default:
		g.logger.Debug("Stripe event type not decoded", zap.String("eventType", out.Type))
	}
	return out, nil
}

// toProcessorSubscription flattens a Stripe subscription. Price and billing
// period come from the first subscription item.
func toProcessorSubscription(sub *stripe.Subscription) *models.ProcessorSubscription {
	out := &models.ProcessorSubscription{
		ID:                sub.ID,
		Status:            string(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return out
	}
	item := sub.Items.Data[0]
	if item.CurrentPeriodEnd > 0 {
		out.CurrentPeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
	}
	if item.Price != nil {
		out.PriceID = item.Price.ID
		out.PriceLabel = item.Price.Nickname
	}
	return out
}
