package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"qacart-backend-go/internal/models"
)

const usersCollection = "users"

// firestoreUserRepository implements the UserRepository interface using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client, logger *zap.Logger) UserRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for UserRepository.")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &firestoreUserRepository{client: client, logger: logger}
}

// Create adds a new user document to Firestore.
// The user.ID (Firebase Auth UID) is used as the Firestore document ID.
func (r *firestoreUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Create(ctx, user)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("user with ID '%s' already exists: %w", user.ID, err)
		}
		return fmt.Errorf("failed to create user with ID '%s': %w", user.ID, err)
	}
	return nil
}

// GetByID retrieves a user document from Firestore by its ID (Firebase Auth UID).
func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}
	return decodeUser(docSnap)
}

// List returns all users ordered by creation time, newest first.
func (r *firestoreUserRepository) List(ctx context.Context) ([]*models.User, error) {
	iter := r.client.Collection(usersCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	return r.collectUsers(iter)
}

// Delete removes a user document.
func (r *firestoreUserRepository) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("userID cannot be empty for Delete operation")
	}
	if _, err := r.client.Collection(usersCollection).Doc(userID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete user with ID '%s': %w", userID, err)
	}
	return nil
}

// FindByStripeCustomerID looks up the user linked to a Stripe customer.
func (r *firestoreUserRepository) FindByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	if customerID == "" {
		return nil, errors.New("customerID cannot be empty for FindByStripeCustomerID operation")
	}
	iter := r.client.Collection(usersCollection).Where("stripeCustomerId", "==", customerID).Limit(1).Documents(ctx)
	users, err := r.collectUsers(iter)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user with Stripe customer '%s' not found: %w", customerID, ErrNotFound)
	}
	return users[0], nil
}

// SetStripeCustomerID stores the Stripe customer ID on the user document.
func (r *firestoreUserRepository) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "stripeCustomerId", Value: customerID},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return wrapUpdateError(userID, err)
	}
	return nil
}

// ReplaceSubscription overwrites the subscription sub-object, dropping every
// field that is not set in sub.
func (r *firestoreUserRepository) ReplaceSubscription(ctx context.Context, userID string, sub models.Subscription) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "subscription", Value: sub},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return wrapUpdateError(userID, err)
	}
	return nil
}

// PatchSubscription writes only the patch fields, leaving the rest of the
// subscription sub-object (including giftDetails) untouched.
func (r *firestoreUserRepository) PatchSubscription(ctx context.Context, userID string, patch models.SubscriptionPatch) error {
	updates := subscriptionUpdates(patch)
	if len(updates) == 0 {
		return nil
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})
	if _, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, updates); err != nil {
		return wrapUpdateError(userID, err)
	}
	return nil
}

// ListWithExpiredGifts returns users whose gift expiry lies before now.
func (r *firestoreUserRepository) ListWithExpiredGifts(ctx context.Context, now time.Time) ([]*models.User, error) {
	iter := r.client.Collection(usersCollection).Where("subscription.giftDetails.expiresAt", "<", now).Documents(ctx)
	return r.collectUsers(iter)
}

func subscriptionUpdates(p models.SubscriptionPatch) []firestore.Update {
	var updates []firestore.Update
	add := func(field string, value interface{}) {
		updates = append(updates, firestore.Update{Path: "subscription." + field, Value: value})
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.Plan != nil {
		add("plan", *p.Plan)
	}
	if p.IsActive != nil {
		add("isActive", *p.IsActive)
	}
	if p.StripeSubscriptionID != nil {
		add("stripeSubscriptionId", *p.StripeSubscriptionID)
	}
	if p.StripePriceID != nil {
		add("stripePriceId", *p.StripePriceID)
	}
	if p.StripeStatus != nil {
		add("stripeStatus", *p.StripeStatus)
	}
	if p.CurrentPeriodEnd != nil {
		add("currentPeriodEnd", *p.CurrentPeriodEnd)
	}
	if p.NextBillingDate != nil {
		add("nextBillingDate", *p.NextBillingDate)
	}
	if p.CancelAtPeriodEnd != nil {
		add("cancelAtPeriodEnd", *p.CancelAtPeriodEnd)
	}
	return updates
}

func decodeUser(docSnap *firestore.DocumentSnapshot) (*models.User, error) {
	var user models.User
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", docSnap.Ref.ID, err)
	}
	user.ID = docSnap.Ref.ID
	return &user, nil
}

func (r *firestoreUserRepository) collectUsers(iter *firestore.DocumentIterator) ([]*models.User, error) {
	defer iter.Stop()

	var users []*models.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate users: %w", err)
		}
		user, err := decodeUser(doc)
		if err != nil {
			r.logger.Warn("Skipping undecodable user document", zap.String("userID", doc.Ref.ID), zap.Error(err))
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

func wrapUpdateError(userID string, err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("user with ID '%s' not found for update: %w", userID, ErrNotFound)
	}
	return fmt.Errorf("failed to update user with ID '%s': %w", userID, err)
}
