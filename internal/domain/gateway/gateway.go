package gateway

import (
	"context"
	"time"
)

// PaymentGateway defines the contract the rest of the service holds against
// the payment provider. The live Paystack client and the deterministic mock
// both implement it; callers never know which one they were handed.
type PaymentGateway interface {
	// InitializeTransaction creates a new transaction with the provider and
	// returns the authorization URL the payer is redirected to.
	InitializeTransaction(ctx context.Context, req *InitializeRequest) (*InitializeResponse, error)

	// VerifyTransaction resolves the current status of a transaction.
	// Returns errors.ErrTransactionNotFound when the reference is unknown.
	VerifyTransaction(ctx context.Context, reference string) (*VerifyResponse, error)

	// VerifyBankAccount resolves an account number against a bank. Stateless.
	VerifyBankAccount(ctx context.Context, req *BankAccountRequest) (*BankAccountResponse, error)

	// ListBanks returns the provider's supported banks, in provider order.
	ListBanks(ctx context.Context) ([]Bank, error)
}

// InitializeRequest is a provider-agnostic transaction initialization request.
// Amount is in minor currency units.
type InitializeRequest struct {
	Email       string                 `json:"email"`
	Amount      int64                  `json:"amount"`
	Currency    string                 `json:"currency,omitempty"`
	Reference   string                 `json:"reference,omitempty"`
	CallbackURL string                 `json:"callback_url,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// InitializeResponse carries the redirect data for a newly created transaction
type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResponse is the resolved state of a transaction
type VerifyResponse struct {
	Reference     string                 `json:"reference"`
	Status        string                 `json:"status"`
	Amount        int64                  `json:"amount"`
	Currency      string                 `json:"currency"`
	PaidAt        *time.Time             `json:"paid_at,omitempty"`
	CustomerEmail string                 `json:"customer_email"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// BankAccountRequest identifies an account to resolve
type BankAccountRequest struct {
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
}

// BankAccountResponse is the resolved account holder
type BankAccountResponse struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankID        int    `json:"bank_id"`
}

// Bank is a provider-side bank reference entry
type Bank struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Active bool   `json:"active"`
}

// Transaction statuses as reported by the gateway
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)
