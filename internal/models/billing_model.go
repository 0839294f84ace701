package models

import "time"

// Stripe event types the reconciler acts on.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventSubscriptionCreated      = "customer.subscription.created"
	EventSubscriptionUpdated      = "customer.subscription.updated"
	EventSubscriptionDeleted      = "customer.subscription.deleted"
)

// ProcessorSubscription is the payment processor's view of a subscription,
// flattened to the fields reconciliation needs.
type ProcessorSubscription struct {
	ID                string
	CustomerID        string
	Status            string // e.g. "active", "past_due", "canceled"
	PriceID           string
	PriceLabel        string // human-readable price nickname
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
}

// CheckoutSessionEvent carries the fields of a completed checkout session.
type CheckoutSessionEvent struct {
	ID             string
	CustomerID     string
	SubscriptionID string
	Metadata       map[string]string
}

// WebhookEvent is a verified payment processor event. Exactly one of
// CheckoutSession and Subscription is set for the handled event types.
type WebhookEvent struct {
	ID              string
	Type            string
	CheckoutSession *CheckoutSessionEvent
	Subscription    *ProcessorSubscription
}

// CheckoutSessionParams describes a hosted checkout session to create.
type CheckoutSessionParams struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// CheckoutSession is a created hosted checkout session.
type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}
