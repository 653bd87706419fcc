package usecase

import (
	"context"
	"errors"

	"github.com/kiyumart/payment-service/internal/adapter/repository"
	"github.com/kiyumart/payment-service/internal/domain/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SettlementService derives the platform commission and seller payout for a
// paid order. Settlement is idempotent per order: repeated calls, including
// concurrent ones from webhook retries, converge on a single commission row.
type SettlementService struct {
	commissionRepo repository.CommissionRepository
	audit          AuditRecorder
	logger         *zap.Logger
}

// NewSettlementService creates a new settlement service
func NewSettlementService(commissionRepo repository.CommissionRepository, audit AuditRecorder, logger *zap.Logger) *SettlementService {
	return &SettlementService{
		commissionRepo: commissionRepo,
		audit:          audit,
		logger:         logger,
	}
}

// SettleOrder computes and persists the commission for an order. Amounts are
// in minor currency units. If a commission already exists for the order the
// existing record is returned unchanged.
func (s *SettlementService) SettleOrder(ctx context.Context, orderID string, orderAmount int64, commissionRate decimal.Decimal) (*model.Commission, error) {
	if orderID == "" {
		return nil, errors.New("order ID is required")
	}
	if orderAmount <= 0 {
		return nil, errors.New("invalid order amount")
	}

	commissionAmount := computeCommission(orderAmount, commissionRate)

	commission := &model.Commission{
		OrderID:           orderID,
		OrderAmountMinor:  orderAmount,
		CommissionRate:    commissionRate,
		CommissionMinor:   commissionAmount,
		SellerPayoutMinor: orderAmount - commissionAmount,
	}

	result, created, err := s.commissionRepo.CreateIfAbsent(ctx, commission)
	if err != nil {
		return nil, err
	}

	if !created {
		s.logger.Info("Commission already settled for order",
			zap.String("order_id", orderID))
		return result, nil
	}

	s.logger.Info("Order settled",
		zap.String("order_id", orderID),
		zap.Int64("order_amount", orderAmount),
		zap.Int64("commission_amount", result.CommissionMinor),
		zap.Int64("seller_payout", result.SellerPayoutMinor))

	s.audit.Record(ctx, "commission.created", nil, model.JSONB{
		"order_id":          orderID,
		"order_amount":      orderAmount,
		"commission_amount": result.CommissionMinor,
		"seller_payout":     result.SellerPayoutMinor,
	}, &AuditTarget{Type: "order", ID: orderID})

	return result, nil
}

// computeCommission rounds half-up to the minor currency unit: a 10001 order
// at 5% yields 500.05 which rounds to 500, while 10010 yields 500.5 which
// rounds to 501.
func computeCommission(orderAmount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(orderAmount).Mul(rate).Round(0).IntPart()
}
