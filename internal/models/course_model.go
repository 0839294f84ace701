package models

import "time"

// Course is a published or draft course.
type Course struct {
	ID          string    `json:"id" firestore:"-"`
	Slug        string    `json:"slug" firestore:"slug"`
	Title       string    `json:"title" firestore:"title"`
	TitleEn     string    `json:"titleEn,omitempty" firestore:"titleEn,omitempty"`
	Description string    `json:"description,omitempty" firestore:"description,omitempty"`
	Level       string    `json:"level,omitempty" firestore:"level,omitempty"`
	ImageURL    string    `json:"imageURL,omitempty" firestore:"imageURL,omitempty"`
	IsPremium   bool      `json:"isPremium" firestore:"isPremium"`
	IsPublished bool      `json:"isPublished" firestore:"isPublished"`
	Order       int       `json:"order" firestore:"order"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// Lesson belongs to a course; stored in the course's lessons subcollection.
type Lesson struct {
	ID              string    `json:"id" firestore:"-"`
	CourseID        string    `json:"courseId" firestore:"-"`
	Title           string    `json:"title" firestore:"title"`
	TitleEn         string    `json:"titleEn,omitempty" firestore:"titleEn,omitempty"`
	VideoURL        string    `json:"videoURL,omitempty" firestore:"videoURL,omitempty"`
	DurationMinutes int       `json:"durationMinutes,omitempty" firestore:"durationMinutes,omitempty"`
	Order           int       `json:"order" firestore:"order"`
	IsFree          bool      `json:"isFree" firestore:"isFree"`
	CreatedAt       time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// CourseDetail is a course together with its ordered lessons.
type CourseDetail struct {
	Course
	Lessons      []*Lesson `json:"lessons"`
	TotalLessons int       `json:"totalLessons"`
}
