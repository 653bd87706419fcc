package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/kiyumart/payment-service/internal/adapter/repository"
	"github.com/kiyumart/payment-service/internal/domain/model"
	"go.uber.org/zap"
)

// AuditTarget identifies the record an audited action touched
type AuditTarget struct {
	Type string
	ID   string
}

// AuditRecorder is the best-effort audit sink. Record never returns an
// error: a failed audit write is logged and swallowed so it cannot unwind
// the financial operation being audited.
type AuditRecorder interface {
	Record(ctx context.Context, action string, actorID *uuid.UUID, metadata model.JSONB, target *AuditTarget)
}

type auditRecorder struct {
	auditRepo repository.AuditRepository
	logger    *zap.Logger
}

// NewAuditRecorder creates a new audit recorder
func NewAuditRecorder(auditRepo repository.AuditRepository, logger *zap.Logger) AuditRecorder {
	return &auditRecorder{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

func (a *auditRecorder) Record(ctx context.Context, action string, actorID *uuid.UUID, metadata model.JSONB, target *AuditTarget) {
	entry := &model.AuditLog{
		Action:   action,
		ActorID:  actorID,
		Metadata: metadata,
	}
	if target != nil {
		if target.Type != "" {
			t := target.Type
			entry.TargetType = &t
		}
		if target.ID != "" {
			id := target.ID
			entry.TargetID = &id
		}
	}

	if err := a.auditRepo.Create(ctx, entry); err != nil {
		a.logger.Error("Failed to record audit log entry",
			zap.String("action", action),
			zap.Error(err))
	}
}
