package db

import (
	"context"
	"time"

	"qacart-backend-go/internal/models"
)

// UserRepository defines the interface for user (entitlement record) storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, userID string) error
	// FindByStripeCustomerID returns the user whose stored Stripe customer ID matches.
	FindByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
	// ReplaceSubscription overwrites the whole subscription sub-object.
	ReplaceSubscription(ctx context.Context, userID string, sub models.Subscription) error
	// PatchSubscription updates only the fields set in patch.
	PatchSubscription(ctx context.Context, userID string, patch models.SubscriptionPatch) error
	// ListWithExpiredGifts returns users whose gift expired before now.
	ListWithExpiredGifts(ctx context.Context, now time.Time) ([]*models.User, error)
}

// ProgressRepository defines the interface for per user+course progress storage.
type ProgressRepository interface {
	Get(ctx context.Context, userID, courseID string) (*models.UserProgress, error)
	Save(ctx context.Context, progress *models.UserProgress) error
	ListByUser(ctx context.Context, userID string) ([]*models.UserProgress, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// CertificateRepository defines the interface for certificate storage.
type CertificateRepository interface {
	Create(ctx context.Context, cert *models.Certificate) error
	GetByID(ctx context.Context, certificateID string) (*models.Certificate, error)
	GetByVerificationCode(ctx context.Context, code string) (*models.Certificate, error)
	ListByUserAndCourse(ctx context.Context, userID, courseID string) ([]*models.Certificate, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Certificate, error)
	// CountIssuedBetween counts certificates with issuedAt in [from, to).
	CountIssuedBetween(ctx context.Context, from, to time.Time) (int, error)
	UpdateStatus(ctx context.Context, certificateID, status string, at time.Time) error
	DeleteByUser(ctx context.Context, userID string) error
}

// CourseRepository defines the interface for course and lesson storage.
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) (string, error)
	GetByID(ctx context.Context, courseID string) (*models.Course, error)
	List(ctx context.Context, publishedOnly bool) ([]*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, courseID string) error

	CreateLesson(ctx context.Context, courseID string, lesson *models.Lesson) error
	GetLesson(ctx context.Context, courseID, lessonID string) (*models.Lesson, error)
	ListLessons(ctx context.Context, courseID string) ([]*models.Lesson, error)
	UpdateLesson(ctx context.Context, courseID string, lesson *models.Lesson) error
	DeleteLesson(ctx context.Context, courseID, lessonID string) error
}

// PlanRepository defines the interface for plan catalog storage.
type PlanRepository interface {
	ListActive(ctx context.Context) ([]*models.Plan, error)
	Save(ctx context.Context, plan *models.Plan) error
	Delete(ctx context.Context, planID string) error
}

// AuditRepository defines the interface for audit log data storage operations.
type AuditRepository interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
}
