package core

import (
	"context"
	"time"

	"qacart-backend-go/internal/models"
)

// UserService defines the interface for user-related operations.
type UserService interface {
	// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates a new one with default values.
	GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error)
	// GetByID retrieves a user, downgrading an elapsed gift on the way.
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// BillingService covers checkout, the billing portal and webhook reconciliation.
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, userID, priceID string) (*models.CheckoutSession, error)
	CreatePortalSession(ctx context.Context, userID string) (string, error)
	HandleStripeWebhook(ctx context.Context, signature string, payload []byte) error
}

// AdminService defines back-office user operations.
type AdminService interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	DeleteUser(ctx context.Context, adminID, userID string) error
	TogglePremium(ctx context.Context, adminID, userID string) (*GiftToggleResult, error)
}

// ProgressService defines lesson completion tracking.
type ProgressService interface {
	MarkLessonComplete(ctx context.Context, userID, courseID, lessonID string, totalLessons int, timeSpent *int) (*ProgressUpdate, error)
	GetProgress(ctx context.Context, userID, courseID string) (*models.UserProgress, error)
	ListProgress(ctx context.Context, userID string) ([]*models.UserProgress, error)
}

// CertificateService defines certificate issuance and verification.
type CertificateService interface {
	IssueCertificate(ctx context.Context, userID, courseID, studentName string) (*models.Certificate, error)
	VerifyCertificateByCode(ctx context.Context, code string) (*CertificateVerification, error)
	ListUserCertificates(ctx context.Context, userID string) ([]*models.Certificate, error)
	RevokeCertificate(ctx context.Context, adminID, certificateID string) (*models.Certificate, error)
}

// CourseService defines course browsing and the admin course/lesson CRUD.
type CourseService interface {
	ListCourses(ctx context.Context, includeDrafts bool) ([]*models.Course, error)
	GetCourse(ctx context.Context, courseID string, viewer *models.User) (*models.CourseDetail, error)
	CreateCourse(ctx context.Context, adminID string, req models.CreateCourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, adminID, courseID string, req models.UpdateCourseRequest) (*models.Course, error)
	DeleteCourse(ctx context.Context, adminID, courseID string) error
	CreateLesson(ctx context.Context, adminID, courseID string, req models.CreateLessonRequest) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, adminID, courseID, lessonID string, req models.UpdateLessonRequest) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, adminID, courseID, lessonID string) error
}

// PlanService defines the plan catalog.
type PlanService interface {
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	FindByPriceID(ctx context.Context, priceID string) (*models.Plan, error)
	SavePlan(ctx context.Context, adminID, planID string, req models.SavePlanRequest) (*models.Plan, error)
	DeletePlan(ctx context.Context, adminID, planID string) error
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error
}

// SessionService exchanges ID tokens for session cookies and revokes them.
type SessionService interface {
	CreateSession(ctx context.Context, idToken string) (cookie string, expiresIn time.Duration, err error)
	RevokeSession(ctx context.Context, sessionCookie string) error
}

// PaymentGateway is the payment processor as seen by the billing service.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, userID, email, name string) (string, error)
	CreateCheckoutSession(ctx context.Context, params models.CheckoutSessionParams) (*models.CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*models.ProcessorSubscription, error)
	// ParseWebhookEvent verifies the signature header against payload and decodes the event.
	// It returns a nil event only when verification fails; a verified event that
	// cannot be decoded comes back non-nil alongside the decode error.
	ParseWebhookEvent(payload []byte, signature string) (*models.WebhookEvent, error)
}

// IdentityProvider is the subset of the identity service the back-office and sessions need.
type IdentityProvider interface {
	CreateSessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	VerifySessionCookie(ctx context.Context, cookie string) (string, error)
	RevokeRefreshTokens(ctx context.Context, userID string) error
	DeleteUser(ctx context.Context, userID string) error
}

// EventPublisher publishes domain events. Delivery is best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// PlanCache caches the active plan catalog.
type PlanCache interface {
	GetPlans(ctx context.Context) ([]*models.Plan, bool, error)
	SetPlans(ctx context.Context, plans []*models.Plan) error
	Invalidate(ctx context.Context) error
}

// Domain event routing keys.
const (
	EventEntitlementChanged = "entitlement.changed"
	EventCourseCompleted    = "course.completed"
	EventCertificateIssued  = "certificate.issued"
)
