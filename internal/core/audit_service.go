package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"qacart-backend-go/internal/db"
	"qacart-backend-go/internal/models"
)

// auditService implements the AuditService interface.
type auditService struct {
	auditRepo db.AuditRepository
}

// NewAuditService creates a new AuditService instance.
func NewAuditService(auditRepo db.AuditRepository) AuditService {
	return &auditService{
		auditRepo: auditRepo,
	}
}

// CreateAuditLog creates a new audit log entry.
func (s *auditService) CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error {
	if s.auditRepo == nil {
		return fmt.Errorf("AuditRepository not initialized in AuditService")
	}
	if logEntry.UserID == "" || logEntry.Action == "" {
		return fmt.Errorf("%w: audit log requires actor and action", ErrInvalidInput)
	}

	if err := s.auditRepo.Create(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to create audit log via repository: %w", err)
	}
	return nil
}

// recordAudit writes an audit entry for a back-office action. A failed write
// is logged and does not undo the action.
func recordAudit(ctx context.Context, audit AuditService, logger *zap.Logger, actorID, action, targetType, targetID string, details map[string]interface{}) {
	if audit == nil {
		return
	}
	entry := models.AuditLog{
		UserID:     actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
	}
	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		logger.Error("Failed to write audit log",
			zap.String("action", action),
			zap.String("targetID", targetID),
			zap.Error(err),
		)
	}
}
