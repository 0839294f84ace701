package models

// Plan is a purchasable subscription plan backed by a Stripe price.
type Plan struct {
	ID            string   `json:"id" firestore:"-" yaml:"id"`
	Name          string   `json:"name" firestore:"name" yaml:"name"`
	NameEn        string   `json:"nameEn,omitempty" firestore:"nameEn,omitempty" yaml:"nameEn"`
	Type          string   `json:"type" firestore:"type" yaml:"type"` // monthly, quarterly, yearly
	StripePriceID string   `json:"stripePriceId" firestore:"stripePriceId" yaml:"stripePriceId"`
	Amount        int64    `json:"amount" firestore:"amount" yaml:"amount"` // minor currency units
	Currency      string   `json:"currency" firestore:"currency" yaml:"currency"`
	Features      []string `json:"features,omitempty" firestore:"features,omitempty" yaml:"features"`
	IsActive      bool     `json:"isActive" firestore:"isActive" yaml:"isActive"`
	Order         int      `json:"order" firestore:"order" yaml:"order"`
}
