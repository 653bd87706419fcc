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

// PayoutService validates and stores seller bank details ahead of
// disbursement. Bank account resolution goes through the gateway so only
// accounts the provider can pay out to are ever saved.
type PayoutService struct {
	gateway     gateway.PaymentGateway
	accountRepo repository.PayoutAccountRepository
	audit       AuditRecorder
	logger      *zap.Logger
}

// NewPayoutService creates a new payout service
func NewPayoutService(gw gateway.PaymentGateway, accountRepo repository.PayoutAccountRepository, audit AuditRecorder, logger *zap.Logger) *PayoutService {
	return &PayoutService{
		gateway:     gw,
		accountRepo: accountRepo,
		audit:       audit,
		logger:      logger,
	}
}

// ListBanks returns the gateway's bank reference data
func (s *PayoutService) ListBanks(ctx context.Context) ([]gateway.Bank, error) {
	return s.gateway.ListBanks(ctx)
}

// ResolveBankAccount looks up the account holder without persisting anything
func (s *PayoutService) ResolveBankAccount(ctx context.Context, accountNumber, bankCode string) (*gateway.BankAccountResponse, error) {
	if accountNumber == "" || bankCode == "" {
		return nil, errors.New("account number and bank code are required")
	}
	return s.gateway.VerifyBankAccount(ctx, &gateway.BankAccountRequest{
		AccountNumber: accountNumber,
		BankCode:      bankCode,
	})
}

// SetPayoutAccount verifies the account with the gateway and saves it as the
// seller's payout destination, replacing any previous one.
func (s *PayoutService) SetPayoutAccount(ctx context.Context, sellerID uuid.UUID, accountNumber, bankCode string) (*model.PayoutAccount, error) {
	resolved, err := s.ResolveBankAccount(ctx, accountNumber, bankCode)
	if err != nil {
		return nil, fmt.Errorf("resolve bank account: %w", err)
	}

	bankName := ""
	if banks, err := s.gateway.ListBanks(ctx); err == nil {
		for _, bank := range banks {
			if bank.Code == bankCode {
				bankName = bank.Name
				break
			}
		}
	}

	account := &model.PayoutAccount{
		SellerID:      sellerID,
		BankCode:      bankCode,
		BankName:      bankName,
		AccountNumber: resolved.AccountNumber,
		AccountName:   resolved.AccountName,
		VerifiedAt:    time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := s.accountRepo.Upsert(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("Payout account saved",
		zap.String("seller_id", sellerID.String()),
		zap.String("bank_code", bankCode))

	s.audit.Record(ctx, "payout_account.updated", &sellerID, model.JSONB{
		"bank_code":      bankCode,
		"account_number": accountNumber,
	}, &AuditTarget{Type: "payout_account", ID: sellerID.String()})

	return account, nil
}

// GetPayoutAccount returns the seller's saved payout account
func (s *PayoutService) GetPayoutAccount(ctx context.Context, sellerID uuid.UUID) (*model.PayoutAccount, error) {
	return s.accountRepo.GetBySellerID(ctx, sellerID)
}
