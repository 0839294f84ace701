package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"qacart-backend-go/internal/models"
)

const certificatesCollection = "certificates"

type firestoreCertificateRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreCertificateRepository creates a CertificateRepository backed by Firestore.
func NewFirestoreCertificateRepository(client *firestore.Client, logger *zap.Logger) CertificateRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for CertificateRepository.")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &firestoreCertificateRepository{client: client, logger: logger}
}

// Create stores a certificate under cert.ID.
func (r *firestoreCertificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	if cert.ID == "" {
		return errors.New("certificate ID cannot be empty for Create operation")
	}
	if _, err := r.client.Collection(certificatesCollection).Doc(cert.ID).Create(ctx, cert); err != nil {
		return fmt.Errorf("failed to create certificate '%s': %w", cert.ID, err)
	}
	return nil
}

func (r *firestoreCertificateRepository) GetByID(ctx context.Context, certificateID string) (*models.Certificate, error) {
	docSnap, err := r.client.Collection(certificatesCollection).Doc(certificateID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("certificate '%s' not found: %w", certificateID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get certificate '%s': %w", certificateID, err)
	}
	return decodeCertificate(docSnap)
}

func (r *firestoreCertificateRepository) GetByVerificationCode(ctx context.Context, code string) (*models.Certificate, error) {
	certs, err := r.collectCertificates(r.client.Collection(certificatesCollection).
		Where("verificationCode", "==", code).Limit(1).Documents(ctx))
	if err != nil {
		return nil, err
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("certificate with code '%s' not found: %w", code, ErrNotFound)
	}
	return certs[0], nil
}

func (r *firestoreCertificateRepository) ListByUserAndCourse(ctx context.Context, userID, courseID string) ([]*models.Certificate, error) {
	return r.collectCertificates(r.client.Collection(certificatesCollection).
		Where("userId", "==", userID).Where("courseId", "==", courseID).Documents(ctx))
}

func (r *firestoreCertificateRepository) ListByUser(ctx context.Context, userID string) ([]*models.Certificate, error) {
	return r.collectCertificates(r.client.Collection(certificatesCollection).
		Where("userId", "==", userID).Documents(ctx))
}

// CountIssuedBetween counts certificate documents with issuedAt in [from, to).
// Snapshots are counted client-side; yearly certificate volume is small.
func (r *firestoreCertificateRepository) CountIssuedBetween(ctx context.Context, from, to time.Time) (int, error) {
	iter := r.client.Collection(certificatesCollection).
		Where("issuedAt", ">=", from).Where("issuedAt", "<", to).Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to iterate certificates for counting: %w", err)
		}
		count++
	}
	return count, nil
}

func (r *firestoreCertificateRepository) UpdateStatus(ctx context.Context, certificateID, certStatus string, at time.Time) error {
	updates := []firestore.Update{{Path: "status", Value: certStatus}}
	if certStatus == models.CertificateStatusRevoked {
		updates = append(updates, firestore.Update{Path: "revokedAt", Value: at})
	}
	if _, err := r.client.Collection(certificatesCollection).Doc(certificateID).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("certificate '%s' not found for update: %w", certificateID, ErrNotFound)
		}
		return fmt.Errorf("failed to update certificate '%s': %w", certificateID, err)
	}
	return nil
}

func (r *firestoreCertificateRepository) DeleteByUser(ctx context.Context, userID string) error {
	return deleteWhere(ctx, r.client.Collection(certificatesCollection).Where("userId", "==", userID))
}

func decodeCertificate(docSnap *firestore.DocumentSnapshot) (*models.Certificate, error) {
	var cert models.Certificate
	if err := docSnap.DataTo(&cert); err != nil {
		return nil, fmt.Errorf("failed to decode certificate '%s': %w", docSnap.Ref.ID, err)
	}
	cert.ID = docSnap.Ref.ID
	return &cert, nil
}

func (r *firestoreCertificateRepository) collectCertificates(iter *firestore.DocumentIterator) ([]*models.Certificate, error) {
	defer iter.Stop()

	var certs []*models.Certificate
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate certificates: %w", err)
		}
		cert, err := decodeCertificate(doc)
		if err != nil {
			r.logger.Warn("Skipping undecodable certificate", zap.String("certificateID", doc.Ref.ID), zap.Error(err))
			continue
		}
		certs = append(certs, cert)
	}
	return certs, nil
}
