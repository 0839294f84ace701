package models

import "time"

// Audit actions recorded for back-office operations.
const (
	AuditPremiumGranted     = "PREMIUM_GIFT_GRANTED"
	AuditPremiumRevoked     = "PREMIUM_GIFT_REVOKED"
	AuditUserDeleted        = "USER_DELETED"
	AuditCourseCreated      = "COURSE_CREATED"
	AuditCourseUpdated      = "COURSE_UPDATED"
	AuditCourseDeleted      = "COURSE_DELETED"
	AuditLessonCreated      = "LESSON_CREATED"
	AuditLessonUpdated      = "LESSON_UPDATED"
	AuditLessonDeleted      = "LESSON_DELETED"
	AuditPlanSaved          = "PLAN_SAVED"
	AuditPlanDeleted        = "PLAN_DELETED"
	AuditCertificateRevoked = "CERTIFICATE_REVOKED"
)

// AuditLog represents an audit trail event.
type AuditLog struct {
	ID         string                 `json:"id" firestore:"-"`
	Timestamp  time.Time              `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	UserID     string                 `json:"userId" firestore:"userId"` // Who performed the action
	Action     string                 `json:"action" firestore:"action"`
	TargetType string                 `json:"targetType,omitempty" firestore:"targetType,omitempty"` // e.g., "USER", "COURSE", "PLAN"
	TargetID   string                 `json:"targetId,omitempty" firestore:"targetId,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
}
