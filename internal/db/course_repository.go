package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"qacart-backend-go/internal/models"
)

const (
	coursesCollection = "courses"
	lessonsCollection = "lessons" // subcollection of a course document
)

// firestoreCourseRepository implements the CourseRepository interface using Firestore.
type firestoreCourseRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreCourseRepository creates a new instance of firestoreCourseRepository.
func NewFirestoreCourseRepository(client *firestore.Client, logger *zap.Logger) CourseRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for CourseRepository.")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &firestoreCourseRepository{client: client, logger: logger}
}

// Create adds a new course document. If course.ID is empty a document ID is generated.
func (r *firestoreCourseRepository) Create(ctx context.Context, course *models.Course) (string, error) {
	var docRef *firestore.DocumentRef
	if course.ID != "" {
		docRef = r.client.Collection(coursesCollection).Doc(course.ID)
	} else {
		docRef = r.client.Collection(coursesCollection).NewDoc()
		course.ID = docRef.ID
	}
	if _, err := docRef.Create(ctx, course); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return "", fmt.Errorf("course with ID '%s' already exists: %w", course.ID, err)
		}
		return "", fmt.Errorf("failed to create course: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a course document by its ID.
func (r *firestoreCourseRepository) GetByID(ctx context.Context, courseID string) (*models.Course, error) {
	if courseID == "" {
		return nil, errors.New("courseID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(coursesCollection).Doc(courseID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("course with ID '%s' not found: %w", courseID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get course with ID '%s': %w", courseID, err)
	}

	var course models.Course
	if err := docSnap.DataTo(&course); err != nil {
		return nil, fmt.Errorf("failed to decode course data for ID '%s': %w", courseID, err)
	}
	course.ID = docSnap.Ref.ID
	return &course, nil
}

// List returns courses ordered by their display order.
// Ordering happens in memory so that the publishedOnly filter needs no composite index.
func (r *firestoreCourseRepository) List(ctx context.Context, publishedOnly bool) ([]*models.Course, error) {
	query := r.client.Collection(coursesCollection).Query
	if publishedOnly {
		query = query.Where("isPublished", "==", true)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var courses []*models.Course
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate courses: %w", err)
		}
		var course models.Course
		if err := doc.DataTo(&course); err != nil {
			r.logger.Warn("Skipping undecodable course", zap.String("courseID", doc.Ref.ID), zap.Error(err))
			continue
		}
		course.ID = doc.Ref.ID
		courses = append(courses, &course)
	}

	sort.SliceStable(courses, func(i, j int) bool { return courses[i].Order < courses[j].Order })
	return courses, nil
}

// Update overwrites an existing course document.
func (r *firestoreCourseRepository) Update(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		return errors.New("course ID cannot be empty for Update operation")
	}
	if _, err := r.client.Collection(coursesCollection).Doc(course.ID).Set(ctx, course); err != nil {
		return fmt.Errorf("failed to update course with ID '%s': %w", course.ID, err)
	}
	return nil
}

// Delete removes a course document together with its lessons subcollection.
func (r *firestoreCourseRepository) Delete(ctx context.Context, courseID string) error {
	if courseID == "" {
		return errors.New("courseID cannot be empty for Delete operation")
	}
	courseRef := r.client.Collection(coursesCollection).Doc(courseID)

	// Firestore does not delete subcollections with their parent document.
	lessonIter := courseRef.Collection(lessonsCollection).Documents(ctx)
	defer lessonIter.Stop()
	for {
		doc, err := lessonIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to iterate lessons of course '%s' for deletion: %w", courseID, err)
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete lesson '%s' of course '%s': %w", doc.Ref.ID, courseID, err)
		}
	}

	if _, err := courseRef.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete course with ID '%s': %w", courseID, err)
	}
	return nil
}

// CreateLesson adds a lesson document to the course's lessons subcollection.
// lesson.ID must be set by the caller.
func (r *firestoreCourseRepository) CreateLesson(ctx context.Context, courseID string, lesson *models.Lesson) error {
	if courseID == "" || lesson.ID == "" {
		return errors.New("courseID and lesson ID cannot be empty for CreateLesson operation")
	}
	_, err := r.client.Collection(coursesCollection).Doc(courseID).Collection(lessonsCollection).Doc(lesson.ID).Create(ctx, lesson)
	if err != nil {
		return fmt.Errorf("failed to create lesson in course '%s': %w", courseID, err)
	}
	lesson.CourseID = courseID
	return nil
}

// GetLesson retrieves a lesson of a course.
func (r *firestoreCourseRepository) GetLesson(ctx context.Context, courseID, lessonID string) (*models.Lesson, error) {
	docSnap, err := r.client.Collection(coursesCollection).Doc(courseID).Collection(lessonsCollection).Doc(lessonID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("lesson '%s' in course '%s' not found: %w", lessonID, courseID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get lesson '%s' in course '%s': %w", lessonID, courseID, err)
	}
	var lesson models.Lesson
	if err := docSnap.DataTo(&lesson); err != nil {
		return nil, fmt.Errorf("failed to decode lesson '%s': %w", lessonID, err)
	}
	lesson.ID = docSnap.Ref.ID
	lesson.CourseID = courseID
	return &lesson, nil
}

// ListLessons returns the lessons of a course ordered by their order field.
func (r *firestoreCourseRepository) ListLessons(ctx context.Context, courseID string) ([]*models.Lesson, error) {
	iter := r.client.Collection(coursesCollection).Doc(courseID).Collection(lessonsCollection).
		OrderBy("order", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var lessons []*models.Lesson
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate lessons for course '%s': %w", courseID, err)
		}
		var lesson models.Lesson
		if err := doc.DataTo(&lesson); err != nil {
			r.logger.Warn("Skipping undecodable lesson", zap.String("courseID", courseID), zap.String("lessonID", doc.Ref.ID), zap.Error(err))
			continue
		}
		lesson.ID = doc.Ref.ID
		lesson.CourseID = courseID
		lessons = append(lessons, &lesson)
	}
	return lessons, nil
}

// UpdateLesson overwrites a lesson document.
func (r *firestoreCourseRepository) UpdateLesson(ctx context.Context, courseID string, lesson *models.Lesson) error {
	_, err := r.client.Collection(coursesCollection).Doc(courseID).Collection(lessonsCollection).Doc(lesson.ID).Set(ctx, lesson)
	if err != nil {
		return fmt.Errorf("failed to update lesson '%s' in course '%s': %w", lesson.ID, courseID, err)
	}
	return nil
}

// DeleteLesson removes a lesson document.
func (r *firestoreCourseRepository) DeleteLesson(ctx context.Context, courseID, lessonID string) error {
	_, err := r.client.Collection(coursesCollection).Doc(courseID).Collection(lessonsCollection).Doc(lessonID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete lesson '%s' in course '%s': %w", lessonID, courseID, err)
	}
	return nil
}
