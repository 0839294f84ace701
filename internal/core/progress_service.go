package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"qacart-backend-go/internal/db"
	"qacart-backend-go/internal/models"
)

// Progress status messages.
const (
	msgCourseCompleted  = "تهانينا! لقد أكملت جميع دروس الدورة"
	msgLessonsRemaining = "تم إكمال الدرس بنجاح، متبقي %d دروس"
	msgProgressUpdated  = "تم تحديث التقدم بنجاح"
)

// ProgressUpdate is the result of MarkLessonComplete.
type ProgressUpdate struct {
	Progress *models.UserProgress `json:"progress"`
	Message  string               `json:"message"`
}

// CourseCompletedEvent is published when a user's progress first reaches completion.
type CourseCompletedEvent struct {
	UserID      string    `json:"userId"`
	CourseID    string    `json:"courseId"`
	CompletedAt time.Time `json:"completedAt"`
}

type progressService struct {
	progressRepo db.ProgressRepository
	publisher    EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewProgressService creates a ProgressService.
func NewProgressService(progressRepo db.ProgressRepository, publisher EventPublisher, logger *zap.Logger) ProgressService {
	return &progressService{
		progressRepo: progressRepo,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// MarkLessonComplete adds lessonID to the user's completed set for the course and
// recomputes the aggregate. Re-marking a lesson refreshes its timestamps only.
func (s *progressService) MarkLessonComplete(ctx context.Context, userID, courseID, lessonID string, totalLessons int, timeSpent *int) (*ProgressUpdate, error) {
	if userID == "" || courseID == "" || lessonID == "" {
		return nil, ErrInvalidInput
	}
	if totalLessons <= 0 {
		return nil, ErrInvalidTotalLessons
	}
	if timeSpent != nil && *timeSpent < 0 {
		return nil, ErrInvalidTimeSpent
	}

	now := s.now().UTC()
	progress, err := s.progressRepo.Get(ctx, userID, courseID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("failed to load progress for user '%s' course '%s': %w", userID, courseID, err)
		}
		progress = newProgress(userID, courseID, now)
	}
	if progress.LessonProgress == nil {
		progress.LessonProgress = make(map[string]models.LessonProgress)
	}

	added := false
	if !progress.HasCompleted(lessonID) {
		progress.CompletedLessons = append(progress.CompletedLessons, lessonID)
		added = true
	}
	// A repeat call without timeSpent keeps the recorded duration.
	entry := models.LessonProgress{CompletedAt: now, TimeSpent: progress.LessonProgress[lessonID].TimeSpent}
	if timeSpent != nil {
		ts := *timeSpent
		entry.TimeSpent = &ts
	}
	progress.LessonProgress[lessonID] = entry

	wasCompleted := progress.IsCompleted
	progress.TotalLessons = totalLessons
	progress.ProgressPercentage = completionPercentage(len(progress.CompletedLessons), totalLessons)
	progress.IsCompleted = len(progress.CompletedLessons) >= totalLessons
	justCompleted := progress.IsCompleted && !wasCompleted
	if justCompleted && progress.CompletedAt == nil {
		completedAt := now
		progress.CompletedAt = &completedAt
	}
	progress.UpdatedAt = now
	progress.LastAccessed = now

	if err := s.progressRepo.Save(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to save progress for user '%s' course '%s': %w", userID, courseID, err)
	}

	if justCompleted {
		s.logger.Info("Course completed", zap.String("userID", userID), zap.String("courseID", courseID))
		publishEvent(ctx, s.publisher, s.logger, EventCourseCompleted, CourseCompletedEvent{
			UserID: userID, CourseID: courseID, CompletedAt: now,
		})
	}

	return &ProgressUpdate{Progress: progress, Message: progressMessage(progress, added)}, nil
}

// GetProgress returns the user's progress for a course, or an empty record if
// the user has not started it.
func (s *progressService) GetProgress(ctx context.Context, userID, courseID string) (*models.UserProgress, error) {
	progress, err := s.progressRepo.Get(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return newProgress(userID, courseID, time.Time{}), nil
		}
		return nil, fmt.Errorf("failed to load progress for user '%s' course '%s': %w", userID, courseID, err)
	}
	return progress, nil
}

// ListProgress returns all progress records of a user.
func (s *progressService) ListProgress(ctx context.Context, userID string) ([]*models.UserProgress, error) {
	list, err := s.progressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress for user '%s': %w", userID, err)
	}
	return list, nil
}

func newProgress(userID, courseID string, now time.Time) *models.UserProgress {
	return &models.UserProgress{
		ID:               models.ProgressDocID(userID, courseID),
		UserID:           userID,
		CourseID:         courseID,
		CompletedLessons: []string{},
		LessonProgress:   map[string]models.LessonProgress{},
		CreatedAt:        now,
		UpdatedAt:        now,
		LastAccessed:     now,
	}
}

// completionPercentage rounds completed/total to a whole percent, capped at 100.
func completionPercentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(completed) / float64(total) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

func progressMessage(p *models.UserProgress, added bool) string {
	if p.IsCompleted {
		return msgCourseCompleted
	}
	if added {
		if remaining := p.TotalLessons - len(p.CompletedLessons); remaining > 0 {
			return fmt.Sprintf(msgLessonsRemaining, remaining)
		}
	}
	return msgProgressUpdated
}
