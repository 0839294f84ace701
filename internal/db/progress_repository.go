package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"qacart-backend-go/internal/models"
)

const progressCollection = "progress"

type firestoreProgressRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreProgressRepository creates a ProgressRepository backed by Firestore.
func NewFirestoreProgressRepository(client *firestore.Client, logger *zap.Logger) ProgressRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ProgressRepository.")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &firestoreProgressRepository{client: client, logger: logger}
}

func (r *firestoreProgressRepository) Get(ctx context.Context, userID, courseID string) (*models.UserProgress, error) {
	docID := models.ProgressDocID(userID, courseID)
	docSnap, err := r.client.Collection(progressCollection).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("progress '%s' not found: %w", docID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get progress '%s': %w", docID, err)
	}
	return decodeProgress(docSnap)
}

// Save writes the full progress record, creating it if needed.
func (r *firestoreProgressRepository) Save(ctx context.Context, progress *models.UserProgress) error {
	if progress.ID == "" {
		progress.ID = models.ProgressDocID(progress.UserID, progress.CourseID)
	}
	if _, err := r.client.Collection(progressCollection).Doc(progress.ID).Set(ctx, progress); err != nil {
		return fmt.Errorf("failed to save progress '%s': %w", progress.ID, err)
	}
	return nil
}

func (r *firestoreProgressRepository) ListByUser(ctx context.Context, userID string) ([]*models.UserProgress, error) {
	iter := r.client.Collection(progressCollection).Where("userId", "==", userID).Documents(ctx)
	defer iter.Stop()

	var records []*models.UserProgress
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate progress for user '%s': %w", userID, err)
		}
		p, err := decodeProgress(doc)
		if err != nil {
			r.logger.Warn("Skipping undecodable progress record", zap.String("progressID", doc.Ref.ID), zap.Error(err))
			continue
		}
		records = append(records, p)
	}
	return records, nil
}

// DeleteByUser removes every progress record of the user.
func (r *firestoreProgressRepository) DeleteByUser(ctx context.Context, userID string) error {
	return deleteWhere(ctx, r.client.Collection(progressCollection).Where("userId", "==", userID))
}

func decodeProgress(docSnap *firestore.DocumentSnapshot) (*models.UserProgress, error) {
	var p models.UserProgress
	if err := docSnap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode progress '%s': %w", docSnap.Ref.ID, err)
	}
	p.ID = docSnap.Ref.ID
	if p.LessonProgress == nil {
		p.LessonProgress = make(map[string]models.LessonProgress)
	}
	return &p, nil
}

// deleteWhere deletes every document matched by query, one by one.
func deleteWhere(ctx context.Context, query firestore.Query) error {
	iter := query.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to iterate documents for deletion: %w", err)
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete document '%s': %w", doc.Ref.ID, err)
		}
	}
}
