package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kiyumart/payment-service/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditFilters narrows audit log listings
type AuditFilters struct {
	Action     string
	ActorID    *uuid.UUID
	TargetType string
	Since      *time.Time
	Limit      int
	Offset     int
}

// AuditRepository appends and reads audit log entries
type AuditRepository interface {
	// Create appends an entry, resolving actor_role from the users table at
	// write time. System actions carry a nil actor and no role.
	Create(ctx context.Context, entry *model.AuditLog) error

	List(ctx context.Context, filters AuditFilters) ([]*model.AuditLog, error)
}

type auditRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit log repository
func NewAuditRepository(db *gorm.DB, logger *zap.Logger) AuditRepository {
	return &auditRepository{
		db:     db,
		logger: logger,
	}
}

func (r *auditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	if entry.ActorID != nil && entry.ActorRole == nil {
		var user model.User
		err := r.db.WithContext(ctx).
			Select("role").
			Where("id = ?", *entry.ActorID).
			First(&user).Error
		if err == nil {
			role := string(user.Role)
			entry.ActorRole = &role
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to resolve actor role: %w", err)
		}
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}

	return nil
}

func (r *auditRepository) List(ctx context.Context, filters AuditFilters) ([]*model.AuditLog, error) {
	query := r.db.WithContext(ctx).Model(&model.AuditLog{})

	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if filters.ActorID != nil {
		query = query.Where("actor_id = ?", *filters.ActorID)
	}
	if filters.TargetType != "" {
		query = query.Where("target_type = ?", filters.TargetType)
	}
	if filters.Since != nil {
		query = query.Where("created_at >= ?", *filters.Since)
	}

	limit := filters.Limit
	if limit < 1 {
		limit = 50
	} else if limit > 200 {
		limit = 200
	}

	var entries []*model.AuditLog
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(filters.Offset).
		Find(&entries).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list audit log entries: %w", err)
	}

	return entries, nil
}
