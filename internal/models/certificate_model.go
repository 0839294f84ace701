package models

import "time"

// Certificate statuses.
const (
	CertificateStatusIssued  = "issued"
	CertificateStatusRevoked = "revoked"
)

// Certificate is a course completion certificate.
type Certificate struct {
	ID                string     `json:"id" firestore:"-"`
	UserID            string     `json:"userId" firestore:"userId"`
	CourseID          string     `json:"courseId" firestore:"courseId"`
	CourseTitle       string     `json:"courseTitle" firestore:"courseTitle"`
	StudentName       string     `json:"studentName" firestore:"studentName"`
	CertificateNumber string     `json:"certificateNumber" firestore:"certificateNumber"`
	VerificationCode  string     `json:"verificationCode" firestore:"verificationCode"`
	Status            string     `json:"status" firestore:"status"`
	IssuedAt          time.Time  `json:"issuedAt" firestore:"issuedAt"`
	RevokedAt         *time.Time `json:"revokedAt,omitempty" firestore:"revokedAt,omitempty"`
}

// PublicCertificate is the view returned by verification; it omits internal IDs.
type PublicCertificate struct {
	CertificateNumber string    `json:"certificateNumber"`
	StudentName       string    `json:"studentName"`
	CourseTitle       string    `json:"courseTitle"`
	IssuedAt          time.Time `json:"issuedAt"`
	Status            string    `json:"status"`
}

// Public returns the redacted view of the certificate.
func (c *Certificate) Public() *PublicCertificate {
	return &PublicCertificate{
		CertificateNumber: c.CertificateNumber,
		StudentName:       c.StudentName,
		CourseTitle:       c.CourseTitle,
		IssuedAt:          c.IssuedAt,
		Status:            c.Status,
	}
}
