package models

// MarkLessonCompleteRequest is the body of POST /progress/complete.
type MarkLessonCompleteRequest struct {
	CourseID     string `json:"courseId" binding:"required"`
	LessonID     string `json:"lessonId" binding:"required"`
	TotalLessons int    `json:"totalLessons"`
	TimeSpent    *int   `json:"timeSpent,omitempty"` // seconds; optional
}

// IssueCertificateRequest is the body of POST /certificates.
type IssueCertificateRequest struct {
	CourseID    string `json:"courseId" binding:"required"`
	StudentName string `json:"studentName" binding:"required"`
}

// CreateCheckoutSessionRequest is the body of POST /billing/create-checkout-session.
type CreateCheckoutSessionRequest struct {
	PriceID string `json:"priceId" binding:"required"`
}

// CreateSessionRequest exchanges a Firebase ID token for a session cookie.
type CreateSessionRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// CreateCourseRequest represents the request body for creating a course.
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	TitleEn     string `json:"titleEn,omitempty"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Level       string `json:"level,omitempty"`
	ImageURL    string `json:"imageURL,omitempty"`
	IsPremium   bool   `json:"isPremium"`
	IsPublished bool   `json:"isPublished"`
	Order       int    `json:"order"`
}

// UpdateCourseRequest represents the request body for updating a course.
// Pointers distinguish between fields not provided and zero values.
type UpdateCourseRequest struct {
	Title       *string `json:"title,omitempty"`
	TitleEn     *string `json:"titleEn,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	Level       *string `json:"level,omitempty"`
	ImageURL    *string `json:"imageURL,omitempty"`
	IsPremium   *bool   `json:"isPremium,omitempty"`
	IsPublished *bool   `json:"isPublished,omitempty"`
	Order       *int    `json:"order,omitempty"`
}

// CreateLessonRequest represents the request body for adding a lesson.
type CreateLessonRequest struct {
	Title           string `json:"title" binding:"required"`
	TitleEn         string `json:"titleEn,omitempty"`
	VideoURL        string `json:"videoURL,omitempty"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	Order           int    `json:"order"`
	IsFree          bool   `json:"isFree"`
}

// UpdateLessonRequest represents the request body for updating a lesson.
type UpdateLessonRequest struct {
	Title           *string `json:"title,omitempty"`
	TitleEn         *string `json:"titleEn,omitempty"`
	VideoURL        *string `json:"videoURL,omitempty"`
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	Order           *int    `json:"order,omitempty"`
	IsFree          *bool   `json:"isFree,omitempty"`
}

// SavePlanRequest represents the request body for creating or replacing a plan.
type SavePlanRequest struct {
	Name          string   `json:"name" binding:"required"`
	NameEn        string   `json:"nameEn,omitempty"`
	Type          string   `json:"type" binding:"required"`
	StripePriceID string   `json:"stripePriceId" binding:"required"`
	Amount        int64    `json:"amount"`
	Currency      string   `json:"currency"`
	Features      []string `json:"features,omitempty"`
	IsActive      bool     `json:"isActive"`
	Order         int      `json:"order"`
}
