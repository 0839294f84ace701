package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"qacart-backend-go/internal/db"
	"qacart-backend-go/internal/models"
)

type courseService struct {
	courseRepo   db.CourseRepository
	auditService AuditService
	logger       *zap.Logger
	now          func() time.Time
}

// NewCourseService creates a CourseService.
func NewCourseService(courseRepo db.CourseRepository, auditService AuditService, logger *zap.Logger) CourseService {
	return &courseService{
		courseRepo:   courseRepo,
		auditService: auditService,
		logger:       logger,
		now:          time.Now,
	}
}

// ListCourses returns published courses, or all courses when includeDrafts is set.
func (s *courseService) ListCourses(ctx context.Context, includeDrafts bool) ([]*models.Course, error) {
	courses, err := s.courseRepo.List(ctx, !includeDrafts)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// GetCourse returns a course with its lessons. Drafts are visible to admins only.
// Video URLs of locked lessons are blanked unless viewer holds premium access.
func (s *courseService) GetCourse(ctx context.Context, courseID string, viewer *models.User) (*models.CourseDetail, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished && !viewer.IsAdmin() {
		return nil, fmt.Errorf("%w: course '%s' is not published", ErrCourseNotFound, courseID)
	}

	lessons, err := s.courseRepo.ListLessons(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons of course '%s': %w", courseID, err)
	}

	unlocked := !course.IsPremium || viewer.IsAdmin() || (viewer != nil && viewer.Subscription.IsPremium(s.now()))
	if !unlocked {
		for _, l := range lessons {
			if !l.IsFree {
				l.VideoURL = ""
			}
		}
	}

	return &models.CourseDetail{
		Course:       *course,
		Lessons:      lessons,
		TotalLessons: len(lessons),
	}, nil
}

func (s *courseService) loadCourse(ctx context.Context, courseID string) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: course with ID '%s'", ErrCourseNotFound, courseID)
		}
		return nil, fmt.Errorf("failed to get course '%s': %w", courseID, err)
	}
	return course, nil
}

// courseSlug derives a URL slug from an explicit value, the English title, or the title.
func courseSlug(explicit, titleEn, title string) string {
	for _, candidate := range []string{explicit, titleEn, title} {
		if s := slug.Make(strings.TrimSpace(candidate)); s != "" {
			return s
		}
	}
	return ""
}

// CreateCourse creates a course.
func (s *courseService) CreateCourse(ctx context.Context, adminID string, req models.CreateCourseRequest) (*models.Course, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrInvalidInput
	}
	now := s.now().UTC()
	course := &models.Course{
		Slug:        courseSlug(req.Slug, req.TitleEn, req.Title),
		Title:       strings.TrimSpace(req.Title),
		TitleEn:     req.TitleEn,
		Description: req.Description,
		Level:       req.Level,
		ImageURL:    req.ImageURL,
		IsPremium:   req.IsPremium,
		IsPublished: req.IsPublished,
		Order:       req.Order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := s.courseRepo.Create(ctx, course)
	if err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	course.ID = id

	s.logger.Info("Course created", zap.String("adminID", adminID), zap.String("courseID", id), zap.String("slug", course.Slug))
	recordAudit(ctx, s.auditService, s.logger, adminID, models.AuditCourseCreated, "COURSE", id, map[string]interface{}{"title": course.Title})
	return course, nil
}

// UpdateCourse applies the provided fields to a course.
func (s *courseService) UpdateCourse(ctx context.Context, adminID, courseID string, req models.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, ErrInvalidInput
		}
		course.Title = strings.TrimSpace(*req.Title)
	}
	if req.TitleEn != nil {
		course.TitleEn = *req.TitleEn
	}
	if req.Slug != nil {
		course.Slug = courseSlug(*req.Slug, course.TitleEn, course.Title)
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Level != nil {
		course.Level = *req.Level
	}
	if req.ImageURL != nil {
		course.ImageURL = *req.ImageURL
	}
	if req.IsPremium != nil {
		course.IsPremium = *req.IsPremium
	}
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}
	if req.Order != nil {
		course.Order = *req.Order
	}
	course.UpdatedAt = s.now().UTC()

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course '%s': %w", courseID, err)
	}
	recordAudit(ctx, s.auditService, s.logger, adminID, models.AuditCourseUpdated, "COURSE", courseID, nil)
	return course, nil
}

// DeleteCourse deletes a course and its lessons.
func (s *courseService) DeleteCourse(ctx context.Context, adminID, courseID string) error {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if err := s.courseRepo.Delete(ctx, courseID); err != nil {
		return fmt.Errorf("failed to delete course '%s': %w", courseID, err)
	}
	s.logger.Info("Course deleted", zap.String("adminID", adminID), zap.String("courseID", courseID))
	recordAudit(ctx, s.auditService, s.logger, adminID, models.AuditCourseDeleted, "COURSE", courseID, map[string]interface{}{"title": course.Title})
	return nil
}

// CreateLesson adds a lesson to a course.
func (s *courseService) CreateLesson(ctx context.Context, adminID, courseID string, req models.CreateLessonRequest) (*models.Lesson, error) {
	if strings.TrimSpace(req.Title) == "" || req.DurationMinutes < 0 {
		return nil, ErrInvalidInput
	}
	if _, err := s.loadCourse(ctx, courseID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	lesson := &models.Lesson{
		ID:              uuid.NewString(),
		CourseID:        courseID,
		Title:           strings.TrimSpace(req.Title),
		TitleEn:         req.TitleEn,
		VideoURL:        req.VideoURL,
		DurationMinutes: req.DurationMinutes,
		Order:           req.Order,
		IsFree:          req.IsFree,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.courseRepo.CreateLesson(ctx, courseID, lesson); err != nil {
		return nil, fmt.Errorf("failed to create lesson in course '%s': %w", courseID, err)
	}
	recordAudit(ctx, s.auditService, s.logger, adminID, models.AuditLessonCreated, "LESSON", lesson.ID, map[string]interface{}{"courseId": courseID})
	return lesson, nil
}

func (s *courseService) loadLesson(ctx context.Context, courseID, lessonID string) (*models.Lesson, error) {
	lesson, err := s.courseRepo.GetLesson(ctx, courseID, lessonID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: lesson '%s' in course '%s'", ErrLessonNotFound, lessonID, courseID)
		}
		return nil, fmt.Errorf("failed to get lesson '%s': %w", lessonID, err)
	}
	return lesson, nil
}

// UpdateLesson applies the provided fields to a lesson.
func (s *courseService) UpdateLesson(ctx context.Context, adminID, courseID, lessonID string, req models.UpdateLessonRequest) (*models.Lesson, error) {
	lesson, err := s.loadLesson(ctx, courseID, lessonID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, ErrInvalidInput
		}
		lesson.Title = strings.TrimSpace(*req.Title)
	}
	if req.TitleEn != nil {
		lesson.TitleEn = *req.TitleEn
	}
	if req.VideoURL != nil {
		lesson.VideoURL = *req.VideoURL
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes < 0 {
			return nil, ErrInvalidInput
		}
		lesson.DurationMinutes = *req.DurationMinutes
	}
	if req.Order != nil {
		lesson.Order = *req.Order
	}
	if req.IsFree != nil {
		lesson.IsFree = *req.IsFree
	}
	lesson.UpdatedAt = s.now().UTC()

	if err := s.courseRepo.UpdateLesson(ctx, courseID, lesson); err != nil {
		return nil, fmt.Errorf("failed to update lesson '%s': %w", lessonID, err)
	}
	recordAudit(ctx, s.auditService, s.logger, adminID, models.AuditLessonUpdated, "LESSON", lessonID, map[string]interface{}{"courseId": courseID})
	return lesson, nil
}

// DeleteLesson removes a lesson from a course.
func (s *courseService) DeleteLesson(ctx context.Context, adminID, courseID, lessonID string) error {
	if _, err := s.loadLesson(ctx, courseID, lessonID); err != nil {
		return err
	}
	if err := s.courseRepo.DeleteLesson(ctx, courseID, lessonID); err != nil {
		return fmt.Errorf("failed to delete lesson '%s': %w", lessonID, err)
	}
	recordAudit(ctx, s.auditService, s.logger, adminID, models.AuditLessonDeleted, "LESSON", lessonID, map[string]interface{}{"courseId": courseID})
	return nil
}
