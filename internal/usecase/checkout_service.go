package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kiyumart/payment-service/internal/adapter/repository"
	"github.com/kiyumart/payment-service/internal/domain/gateway"
	"github.com/kiyumart/payment-service/internal/domain/model"
	"go.uber.org/zap"
)

// CheckoutService drives the synchronous payment flow: initialize a
// transaction with the gateway for checkout redirection, and verify its
// outcome when the payer returns.
type CheckoutService struct {
	gateway         gateway.PaymentGateway
	transactionRepo repository.TransactionRepository
	audit           AuditRecorder
	logger          *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(gw gateway.PaymentGateway, transactionRepo repository.TransactionRepository, audit AuditRecorder, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		gateway:         gw,
		transactionRepo: transactionRepo,
		audit:           audit,
		logger:          logger,
	}
}

// InitializePayment creates exactly one pending transaction row and returns
// the gateway redirect data. When no reference is supplied one is generated.
func (s *CheckoutService) InitializePayment(ctx context.Context, actorID *uuid.UUID, req *gateway.InitializeRequest) (*gateway.InitializeResponse, error) {
	if req.Email == "" {
		return nil, errors.New("email is required")
	}
	if req.Amount <= 0 {
		return nil, errors.New("invalid payment amount")
	}
	if req.Currency == "" {
		req.Currency = "GHS"
	}
	if req.Reference == "" {
		req.Reference = GenerateReference()
	}

	resp, err := s.gateway.InitializeTransaction(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("initialize transaction: %w", err)
	}

	tx := &model.Transaction{
		Reference:        resp.Reference,
		AmountMinor:      req.Amount,
		Currency:         req.Currency,
		Email:            req.Email,
		Status:           model.TransactionStatusPending,
		AuthorizationURL: resp.AuthorizationURL,
		AccessCode:       resp.AccessCode,
		Metadata:         model.JSONB(req.Metadata),
	}
	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("Payment initialized",
		zap.String("reference", resp.Reference),
		zap.Int64("amount", req.Amount),
		zap.String("currency", req.Currency))

	s.audit.Record(ctx, "payment.initialized", actorID, model.JSONB{
		"reference": resp.Reference,
		"amount":    req.Amount,
		"currency":  req.Currency,
	}, &AuditTarget{Type: "transaction", ID: resp.Reference})

	return resp, nil
}

// VerifyPayment resolves a transaction's status with the gateway and persists
// the transition. Amount, currency and email are never modified here.
func (s *CheckoutService) VerifyPayment(ctx context.Context, reference string) (*gateway.VerifyResponse, error) {
	if reference == "" {
		return nil, errors.New("reference is required")
	}

	verification, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}

	switch verification.Status {
	case gateway.StatusSuccess:
		paidAt := time.Now()
		if verification.PaidAt != nil {
			paidAt = *verification.PaidAt
		}
		if err := s.transactionRepo.MarkSuccess(ctx, reference, paidAt); err != nil {
			return nil, err
		}
	case gateway.StatusFailed:
		if err := s.transactionRepo.MarkFailed(ctx, reference); err != nil {
			return nil, err
		}
	}

	return verification, nil
}

// GenerateReference produces a transaction reference unique with
// overwhelming probability.
func GenerateReference() string {
	return fmt.Sprintf("KYM-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
