package models

import "time"

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Subscription statuses stored in subscription.status.
const (
	SubscriptionStatusPremium = "premium"
	SubscriptionStatusFree    = "free"
)

// Plan tiers.
const (
	PlanMonthly   = "monthly"
	PlanQuarterly = "quarterly"
	PlanYearly    = "yearly"
)

// GiftTypeAdmin marks an entitlement granted from the admin back-office.
const GiftTypeAdmin = "admin_gift"

// User represents a platform user and their entitlement record.
type User struct {
	ID               string       `json:"id" firestore:"-"` // Firebase Auth UID, used as the document ID
	Email            string       `json:"email" firestore:"email"`
	DisplayName      string       `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	PhotoURL         string       `json:"photoURL,omitempty" firestore:"photoURL,omitempty"`
	Role             string       `json:"role" firestore:"role"`
	StripeCustomerID string       `json:"stripeCustomerId,omitempty" firestore:"stripeCustomerId,omitempty"`
	Subscription     Subscription `json:"subscription" firestore:"subscription"`
	CreatedAt        time.Time    `json:"createdAt" firestore:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Subscription is the entitlement sub-object of a user document.
// Fields prefixed with Stripe mirror the payment processor's state.
type Subscription struct {
	Status               string       `json:"status" firestore:"status"`
	Plan                 string       `json:"plan,omitempty" firestore:"plan,omitempty"`
	IsActive             bool         `json:"isActive" firestore:"isActive"`
	GiftDetails          *GiftDetails `json:"giftDetails,omitempty" firestore:"giftDetails,omitempty"`
	StripeSubscriptionID string       `json:"stripeSubscriptionId,omitempty" firestore:"stripeSubscriptionId,omitempty"`
	StripePriceID        string       `json:"stripePriceId,omitempty" firestore:"stripePriceId,omitempty"`
	StripeStatus         string       `json:"stripeStatus,omitempty" firestore:"stripeStatus,omitempty"`
	CurrentPeriodEnd     *time.Time   `json:"currentPeriodEnd,omitempty" firestore:"currentPeriodEnd,omitempty"`
	NextBillingDate      *time.Time   `json:"nextBillingDate,omitempty" firestore:"nextBillingDate,omitempty"`
	CancelAtPeriodEnd    bool         `json:"cancelAtPeriodEnd,omitempty" firestore:"cancelAtPeriodEnd,omitempty"`
}

// FreeSubscription is the default entitlement of a new or downgraded user.
func FreeSubscription() Subscription {
	return Subscription{Status: SubscriptionStatusFree, IsActive: false}
}

// GiftDetails records an admin-granted, time-boxed premium entitlement.
type GiftDetails struct {
	GrantedAt time.Time `json:"grantedAt" firestore:"grantedAt"`
	ExpiresAt time.Time `json:"expiresAt" firestore:"expiresAt"`
	Type      string    `json:"type" firestore:"type"`
}

// HasActiveGift reports whether a gift exists and has not yet expired at now.
func (s Subscription) HasActiveGift(now time.Time) bool {
	return s.GiftDetails != nil && s.GiftDetails.ExpiresAt.After(now)
}

// GiftExpired reports whether a gift exists whose expiry has passed at now.
func (s Subscription) GiftExpired(now time.Time) bool {
	return s.GiftDetails != nil && !s.GiftDetails.ExpiresAt.After(now)
}

// HasActivePaidSubscription reports whether Stripe currently bills this user.
func (s Subscription) HasActivePaidSubscription() bool {
	return s.IsActive && s.StripeSubscriptionID != "" && s.StripeStatus == "active"
}

// IsPremium reports whether the entitlement grants premium access at now,
// through either a live gift or an active paid subscription.
func (s Subscription) IsPremium(now time.Time) bool {
	if s.Status != SubscriptionStatusPremium || !s.IsActive {
		return false
	}
	if s.GiftDetails != nil {
		return s.HasActiveGift(now)
	}
	return true
}

// SubscriptionPatch is a field-level update of the subscription sub-object.
// Nil fields are left untouched.
type SubscriptionPatch struct {
	Status               *string
	Plan                 *string
	IsActive             *bool
	StripeSubscriptionID *string
	StripePriceID        *string
	StripeStatus         *string
	CurrentPeriodEnd     *time.Time
	NextBillingDate      *time.Time
	CancelAtPeriodEnd    *bool
}

// ApplyTo writes the non-nil patch fields onto sub.
func (p SubscriptionPatch) ApplyTo(sub *Subscription) {
	if p.Status != nil {
		sub.Status = *p.Status
	}
	if p.Plan != nil {
		sub.Plan = *p.Plan
	}
	if p.IsActive != nil {
		sub.IsActive = *p.IsActive
	}
	if p.StripeSubscriptionID != nil {
		sub.StripeSubscriptionID = *p.StripeSubscriptionID
	}
	if p.StripePriceID != nil {
		sub.StripePriceID = *p.StripePriceID
	}
	if p.StripeStatus != nil {
		sub.StripeStatus = *p.StripeStatus
	}
	if p.CurrentPeriodEnd != nil {
		t := *p.CurrentPeriodEnd
		sub.CurrentPeriodEnd = &t
	}
	if p.NextBillingDate != nil {
		t := *p.NextBillingDate
		sub.NextBillingDate = &t
	}
	if p.CancelAtPeriodEnd != nil {
		sub.CancelAtPeriodEnd = *p.CancelAtPeriodEnd
	}
}
