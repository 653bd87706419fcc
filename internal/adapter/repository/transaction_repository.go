package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainErrors "github.com/kiyumart/payment-service/internal/domain/errors"
	"github.com/kiyumart/payment-service/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TransactionRepository persists gateway-side transaction records
type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	GetByReference(ctx context.Context, reference string) (*model.Transaction, error)

	// MarkSuccess sets status to success and stamps paid_at. Amount,
	// currency and email are never touched after creation. Only pending
	// rows transition; a row already terminal is left unchanged.
	MarkSuccess(ctx context.Context, reference string, paidAt time.Time) error

	// MarkFailed sets status to failed and leaves paid_at empty. Like
	// MarkSuccess it is a no-op on rows that already reached a terminal
	// status.
	MarkFailed(ctx context.Context, reference string) error

	List(ctx context.Context, limit, offset int) ([]*model.Transaction, error)
}

type transactionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB, logger *zap.Logger) TransactionRepository {
	return &transactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *transactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	err := r.db.WithContext(ctx).Create(tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainErrors.ErrDuplicateReference
		}
		r.logger.Error("Failed to create transaction",
			zap.String("reference", tx.Reference),
			zap.Error(err))
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByReference(ctx context.Context, reference string) (*model.Transaction, error) {
	var tx model.Transaction

	err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&tx).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &tx, nil
}

func (r *transactionRepository) MarkSuccess(ctx context.Context, reference string, paidAt time.Time) error {
	return r.updateStatus(ctx, reference, map[string]interface{}{
		"status":     model.TransactionStatusSuccess,
		"paid_at":    &paidAt,
		"updated_at": time.Now(),
	})
}

func (r *transactionRepository) MarkFailed(ctx context.Context, reference string) error {
	return r.updateStatus(ctx, reference, map[string]interface{}{
		"status":     model.TransactionStatusFailed,
		"updated_at": time.Now(),
	})
}

// updateStatus transitions a pending row to a terminal status. Terminal rows
// are read-only: a late or conflicting gateway answer must not rewrite a
// settled outcome, so updates on non-pending rows affect zero rows and are
// treated as no-ops.
func (r *transactionRepository) updateStatus(ctx context.Context, reference string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("reference = ? AND status = ?", reference, model.TransactionStatusPending).
		Updates(updates)

	if result.Error != nil {
		r.logger.Error("Failed to update transaction status",
			zap.String("reference", reference),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update transaction status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		existing, err := r.GetByReference(ctx, reference)
		if err != nil {
			return err
		}
		r.logger.Info("Transaction already terminal, status unchanged",
			zap.String("reference", reference),
			zap.String("status", string(existing.Status)))
		return nil
	}

	return nil
}

func (r *transactionRepository) List(ctx context.Context, limit, offset int) ([]*model.Transaction, error) {
	var txs []*model.Transaction

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return txs, nil
}
