package models

import "time"

// UserProgress tracks lesson completion for one user in one course.
type UserProgress struct {
	ID                 string                    `json:"id" firestore:"-"` // {userId}_{courseId}
	UserID             string                    `json:"userId" firestore:"userId"`
	CourseID           string                    `json:"courseId" firestore:"courseId"`
	CompletedLessons   []string                  `json:"completedLessons" firestore:"completedLessons"`
	ProgressPercentage int                       `json:"progressPercentage" firestore:"progressPercentage"`
	TotalLessons       int                       `json:"totalLessons" firestore:"totalLessons"`
	IsCompleted        bool                      `json:"isCompleted" firestore:"isCompleted"`
	CompletedAt        *time.Time                `json:"completedAt,omitempty" firestore:"completedAt,omitempty"`
	LessonProgress     map[string]LessonProgress `json:"lessonProgress" firestore:"lessonProgress"`
	CreatedAt          time.Time                 `json:"createdAt" firestore:"createdAt"`
	UpdatedAt          time.Time                 `json:"updatedAt" firestore:"updatedAt"`
	LastAccessed       time.Time                 `json:"lastAccessed" firestore:"lastAccessed"`
}

// LessonProgress is the per-lesson completion entry.
type LessonProgress struct {
	CompletedAt time.Time `json:"completedAt" firestore:"completedAt"`
	TimeSpent   *int      `json:"timeSpent,omitempty" firestore:"timeSpent,omitempty"` // seconds
}

// ProgressDocID returns the document ID of the progress record for a user and course.
func ProgressDocID(userID, courseID string) string {
	return userID + "_" + courseID
}

// HasCompleted reports whether lessonID is in the completed set.
func (p *UserProgress) HasCompleted(lessonID string) bool {
	for _, id := range p.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}
