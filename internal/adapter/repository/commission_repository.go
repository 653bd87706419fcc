package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/kiyumart/payment-service/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommissionRepository persists per-order commission records
type CommissionRepository interface {
	// CreateIfAbsent inserts the commission unless one already exists for
	// the order, and returns the row that ended up in the table. created
	// reports whether this call performed the insert. Two concurrent
	// settlements of the same order both return the same single row.
	CreateIfAbsent(ctx context.Context, commission *model.Commission) (result *model.Commission, created bool, err error)

	GetByOrderID(ctx context.Context, orderID string) (*model.Commission, error)
	List(ctx context.Context, limit, offset int) ([]*model.Commission, error)
}

type commissionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewCommissionRepository creates a new commission repository
func NewCommissionRepository(db *gorm.DB, logger *zap.Logger) CommissionRepository {
	return &commissionRepository{
		db:     db,
		logger: logger,
	}
}

// CreateIfAbsent uses conflict-ignore-then-read: the insert is atomic against
// the unique order_id index, and on conflict the existing row is read back.
func (r *commissionRepository) CreateIfAbsent(ctx context.Context, commission *model.Commission) (*model.Commission, bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_id"}}, DoNothing: true}).
		Create(commission)

	if result.Error != nil {
		r.logger.Error("Failed to create commission",
			zap.String("order_id", commission.OrderID),
			zap.Error(result.Error))
		return nil, false, fmt.Errorf("failed to create commission: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		return commission, true, nil
	}

	existing, err := r.GetByOrderID(ctx, commission.OrderID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *commissionRepository) GetByOrderID(ctx context.Context, orderID string) (*model.Commission, error) {
	var commission model.Commission

	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&commission).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get commission: %w", err)
	}

	return &commission, nil
}

func (r *commissionRepository) List(ctx context.Context, limit, offset int) ([]*model.Commission, error) {
	var commissions []*model.Commission

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&commissions).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list commissions: %w", err)
	}

	return commissions, nil
}
