package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	domainErrors "github.com/kiyumart/payment-service/internal/domain/errors"
	"github.com/kiyumart/payment-service/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayoutAccountRepository persists sellers' verified bank details
type PayoutAccountRepository interface {
	// Upsert replaces the seller's payout account; one account per seller.
	Upsert(ctx context.Context, account *model.PayoutAccount) error
	GetBySellerID(ctx context.Context, sellerID uuid.UUID) (*model.PayoutAccount, error)
}

type payoutAccountRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPayoutAccountRepository creates a new payout account repository
func NewPayoutAccountRepository(db *gorm.DB, logger *zap.Logger) PayoutAccountRepository {
	return &payoutAccountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *payoutAccountRepository) Upsert(ctx context.Context, account *model.PayoutAccount) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "seller_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"bank_code", "bank_name", "account_number", "account_name", "verified_at", "updated_at",
			}),
		}).
		Create(account).Error

	if err != nil {
		r.logger.Error("Failed to upsert payout account",
			zap.String("seller_id", account.SellerID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to upsert payout account: %w", err)
	}

	return nil
}

func (r *payoutAccountRepository) GetBySellerID(ctx context.Context, sellerID uuid.UUID) (*model.PayoutAccount, error) {
	var account model.PayoutAccount

	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		First(&account).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrPayoutAccountNotFound
		}
		return nil, fmt.Errorf("failed to get payout account: %w", err)
	}

	return &account, nil
}
