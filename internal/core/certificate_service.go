package core

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"qacart-backend-go/internal/db"
	"qacart-backend-go/internal/models"
)

const (
	verificationCodeLength   = 8
	verificationCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxCodeAttempts          = 5
)

// CertificateVerification is the public answer to a verification lookup.
type CertificateVerification struct {
	Valid       bool                      `json:"valid"`
	Certificate *models.PublicCertificate `json:"certificate,omitempty"`
}

// CertificateIssuedEvent is published after a certificate is persisted.
type CertificateIssuedEvent struct {
	CertificateID     string    `json:"certificateId"`
	CertificateNumber string    `json:"certificateNumber"`
	UserID            string    `json:"userId"`
	CourseID          string    `json:"courseId"`
	IssuedAt          time.Time `json:"issuedAt"`
}

type certificateService struct {
	certRepo     db.CertificateRepository
	progressRepo db.ProgressRepository
	userRepo     db.UserRepository
	courseRepo   db.CourseRepository
	auditService AuditService
	publisher    EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewCertificateService creates a CertificateService.
func NewCertificateService(
	certRepo db.CertificateRepository,
	progressRepo db.ProgressRepository,
	userRepo db.UserRepository,
	courseRepo db.CourseRepository,
	auditService AuditService,
	publisher EventPublisher,
	logger *zap.Logger,
) CertificateService {
	return &certificateService{
		certRepo:     certRepo,
		progressRepo: progressRepo,
		userRepo:     userRepo,
		courseRepo:   courseRepo,
		auditService: auditService,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// IssueCertificate issues a completion certificate. Preconditions are checked in
// order: premium entitlement, full course progress, no prior issued certificate.
func (s *certificateService) IssueCertificate(ctx context.Context, userID, courseID, studentName string) (*models.Certificate, error) {
	studentName = strings.TrimSpace(studentName)
	if courseID == "" || studentName == "" {
		return nil, ErrInvalidInput
	}
	now := s.now().UTC()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load user '%s': %w", userID, err)
	}
	if !user.Subscription.IsPremium(now) {
		return nil, ErrPremiumRequired
	}

	progress, err := s.progressRepo.Get(ctx, userID, courseID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to load progress for user '%s' course '%s': %w", userID, courseID, err)
	}
	if progress == nil || progress.ProgressPercentage < 100 {
		return nil, ErrCourseNotCompleted
	}

	existing, err := s.certRepo.ListByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing certificates: %w", err)
	}
	for _, c := range existing {
		if c.Status != models.CertificateStatusRevoked {
			return nil, ErrCertificateAlreadyIssued
		}
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: course with ID '%s'", ErrCourseNotFound, courseID)
		}
		return nil, fmt.Errorf("failed to load course '%s': %w", courseID, err)
	}

	number, err := s.nextCertificateNumber(ctx, now)
	if err != nil {
		return nil, err
	}
	code, err := s.uniqueVerificationCode(ctx)
	if err != nil {
		return nil, err
	}

	cert := &models.Certificate{
		ID:                fmt.Sprintf("%s_%s_%d", userID, courseID, now.UnixMilli()),
		UserID:            userID,
		CourseID:          courseID,
		CourseTitle:       course.Title,
		StudentName:       studentName,
		CertificateNumber: number,
		VerificationCode:  code,
		Status:            models.CertificateStatusIssued,
		IssuedAt:          now,
	}
	if err := s.certRepo.Create(ctx, cert); err != nil {
		return nil, fmt.Errorf("failed to store certificate: %w", err)
	}

	s.logger.Info("Certificate issued",
		zap.String("userID", userID),
		zap.String("courseID", courseID),
		zap.String("certificateNumber", number),
	)
	publishEvent(ctx, s.publisher, s.logger, EventCertificateIssued, CertificateIssuedEvent{
		CertificateID: cert.ID, CertificateNumber: number, UserID: userID, CourseID: courseID, IssuedAt: now,
	})
	return cert, nil
}

// nextCertificateNumber returns QAC-{year}-{NNNNN} where NNNNN follows the
// number of certificates already issued this calendar year.
func (s *certificateService) nextCertificateNumber(ctx context.Context, now time.Time) (string, error) {
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	count, err := s.certRepo.CountIssuedBetween(ctx, yearStart, yearStart.AddDate(1, 0, 0))
	if err != nil {
		return "", fmt.Errorf("failed to count certificates for %d: %w", now.Year(), err)
	}
	return fmt.Sprintf("QAC-%d-%05d", now.Year(), count+1), nil
}

func (s *certificateService) uniqueVerificationCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := generateVerificationCode()
		if err != nil {
			return "", err
		}
		_, err = s.certRepo.GetByVerificationCode(ctx, code)
		if errors.Is(err, db.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check verification code: %w", err)
		}
	}
	return "", errors.New("could not generate a unique verification code")
}

func generateVerificationCode() (string, error) {
	var b strings.Builder
	alphabetSize := big.NewInt(int64(len(verificationCodeAlphabet)))
	for i := 0; i < verificationCodeLength; i++ {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to generate verification code: %w", err)
		}
		b.WriteByte(verificationCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// VerifyCertificateByCode looks a certificate up by its public code.
func (s *certificateService) VerifyCertificateByCode(ctx context.Context, code string) (*CertificateVerification, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrInvalidInput
	}
	cert, err := s.certRepo.GetByVerificationCode(ctx, code)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: code '%s'", ErrCertificateNotFound, code)
		}
		return nil, fmt.Errorf("failed to look up certificate code: %w", err)
	}
	return &CertificateVerification{
		Valid:       cert.Status == models.CertificateStatusIssued,
		Certificate: cert.Public(),
	}, nil
}

// ListUserCertificates returns the certificates owned by a user.
func (s *certificateService) ListUserCertificates(ctx context.Context, userID string) ([]*models.Certificate, error) {
	certs, err := s.certRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates for user '%s': %w", userID, err)
	}
	return certs, nil
}

// RevokeCertificate marks an issued certificate as revoked.
func (s *certificateService) RevokeCertificate(ctx context.Context, adminID, certificateID string) (*models.Certificate, error) {
	cert, err := s.certRepo.GetByID(ctx, certificateID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: id '%s'", ErrCertificateNotFound, certificateID)
		}
		return nil, fmt.Errorf("failed to load certificate '%s': %w", certificateID, err)
	}
	if cert.Status == models.CertificateStatusRevoked {
		return nil, ErrCertificateRevoked
	}

	now := s.now().UTC()
	if err := s.certRepo.UpdateStatus(ctx, certificateID, models.CertificateStatusRevoked, now); err != nil {
		return nil, fmt.Errorf("failed to revoke certificate '%s': %w", certificateID, err)
	}
	cert.Status = models.CertificateStatusRevoked
	cert.RevokedAt = &now

	s.logger.Info("Certificate revoked", zap.String("adminID", adminID), zap.String("certificateID", certificateID))
	recordAudit(ctx, s.auditService, s.logger, adminID, models.AuditCertificateRevoked, "CERTIFICATE", certificateID, map[string]interface{}{
		"certificateNumber": cert.CertificateNumber,
		"userId":            cert.UserID,
	})
	return cert, nil
}
