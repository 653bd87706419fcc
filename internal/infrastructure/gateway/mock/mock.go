// Package mock provides a deterministic in-memory payment gateway for
// development and tests: no API keys, no network, reproducible behavior.
package mock

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	domainErrors "github.com/kiyumart/payment-service/internal/domain/errors"
	"github.com/kiyumart/payment-service/internal/domain/gateway"
	"go.uber.org/zap"
)

// Config controls the mock gateway's simulated behavior
type Config struct {
	// AutoApprove flips pending transactions to success after twice the
	// configured delay, simulating a payer completing checkout.
	AutoApprove bool
	// FailureRate is the percentage (0-100) of verification calls that
	// report failed regardless of the stored status. At 0 verification is
	// fully deterministic.
	FailureRate int
	// Delay is the simulated provider latency.
	Delay time.Duration
}

type transaction struct {
	reference        string
	amount           int64
	email            string
	currency         string
	status           string
	authorizationURL string
	accessCode       string
	paidAt           *time.Time
	metadata         map[string]interface{}
}

// Client is an in-memory gateway.PaymentGateway. Construct one per process
// (or per test) and inject it where a gateway is needed; Reset restores a
// fresh state without rebuilding the dependency graph.
type Client struct {
	mu           sync.Mutex
	config       Config
	transactions map[string]*transaction
	timers       []*time.Timer
	rng          *rand.Rand
	afterFunc    func(d time.Duration, f func()) *time.Timer
	logger       *zap.Logger
}

// NewClient creates a mock gateway client
func NewClient(config Config, logger *zap.Logger) *Client {
	return &Client{
		config:       config,
		transactions: make(map[string]*transaction),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		afterFunc:    time.AfterFunc,
		logger:       logger,
	}
}

// SetAfterFunc replaces the timer used for auto-completion so tests can run
// the scheduled completion immediately instead of waiting on the wall clock.
func (c *Client) SetAfterFunc(afterFunc func(d time.Duration, f func()) *time.Timer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterFunc = afterFunc
}

// SetRand replaces the failure-rate source with a seeded one
func (c *Client) SetRand(rng *rand.Rand) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rng = rng
}

// InitializeTransaction records a pending transaction and, when auto-approve
// is on, schedules its completion.
func (c *Client) InitializeTransaction(ctx context.Context, req *gateway.InitializeRequest) (*gateway.InitializeResponse, error) {
	if err := c.simulateDelay(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()

	reference := req.Reference
	if reference == "" {
		reference = fmt.Sprintf("MOCK-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
	}
	if _, exists := c.transactions[reference]; exists {
		c.mu.Unlock()
		return nil, domainErrors.ErrDuplicateReference
	}

	currency := req.Currency
	if currency == "" {
		currency = "GHS"
	}
	callbackURL := req.CallbackURL
	if callbackURL == "" {
		callbackURL = "http://localhost:5000/payment/verify"
	}

	tx := &transaction{
		reference:        reference,
		amount:           req.Amount,
		email:            req.Email,
		currency:         currency,
		status:           gateway.StatusPending,
		authorizationURL: fmt.Sprintf("%s?reference=%s", callbackURL, reference),
		accessCode:       "MOCK-ACCESS-" + uuid.NewString()[:16],
		metadata:         req.Metadata,
	}
	c.transactions[reference] = tx

	autoApprove := c.config.AutoApprove
	delay := c.config.Delay
	afterFunc := c.afterFunc
	c.mu.Unlock()

	c.logger.Info("Mock gateway: transaction initialized",
		zap.String("reference", reference),
		zap.Int64("amount", req.Amount),
		zap.String("currency", currency))

	// Scheduled outside the lock: a test-injected afterFunc may run the
	// completion synchronously.
	if autoApprove {
		timer := afterFunc(2*delay, func() {
			c.completePayment(reference)
		})
		if timer != nil {
			c.mu.Lock()
			c.timers = append(c.timers, timer)
			c.mu.Unlock()
		}
	}

	return &gateway.InitializeResponse{
		AuthorizationURL: tx.authorizationURL,
		AccessCode:       tx.accessCode,
		Reference:        reference,
	}, nil
}

// VerifyTransaction reports the stored status, subject to the failure rate
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*gateway.VerifyResponse, error) {
	if err := c.simulateDelay(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tx, ok := c.transactions[reference]
	if !ok {
		return nil, domainErrors.ErrTransactionNotFound
	}

	status := tx.status
	if c.config.FailureRate > 0 && c.rng.Intn(100) < c.config.FailureRate {
		status = gateway.StatusFailed
	}

	c.logger.Info("Mock gateway: transaction verified",
		zap.String("reference", reference),
		zap.String("status", status))

	return &gateway.VerifyResponse{
		Reference:     tx.reference,
		Status:        status,
		Amount:        tx.amount,
		Currency:      tx.currency,
		PaidAt:        tx.paidAt,
		CustomerEmail: tx.email,
		Metadata:      tx.metadata,
	}, nil
}

// VerifyBankAccount resolves any account to a plausible holder name
func (c *Client) VerifyBankAccount(ctx context.Context, req *gateway.BankAccountRequest) (*gateway.BankAccountResponse, error) {
	if err := c.simulateDelay(ctx); err != nil {
		return nil, err
	}

	names := []string{
		"John Doe",
		"Jane Smith",
		"Ahmed Ibrahim",
		"Fatima Yusuf",
		"Chioma Okonkwo",
		"Adebayo Williams",
	}

	c.mu.Lock()
	name := names[c.rng.Intn(len(names))]
	c.mu.Unlock()

	bankID, _ := strconv.Atoi(req.BankCode)

	return &gateway.BankAccountResponse{
		AccountNumber: req.AccountNumber,
		AccountName:   name,
		BankID:        bankID,
	}, nil
}

// ListBanks returns static bank reference data
func (c *Client) ListBanks(ctx context.Context) ([]gateway.Bank, error) {
	if err := c.simulateDelay(ctx); err != nil {
		return nil, err
	}

	return []gateway.Bank{
		{ID: 1, Name: "Access Bank", Code: "044", Active: true},
		{ID: 2, Name: "GTBank", Code: "058", Active: true},
		{ID: 3, Name: "First Bank", Code: "011", Active: true},
		{ID: 4, Name: "UBA", Code: "033", Active: true},
		{ID: 5, Name: "Zenith Bank", Code: "057", Active: true},
		{ID: 6, Name: "Polaris Bank", Code: "076", Active: true},
		{ID: 7, Name: "Stanbic IBTC", Code: "221", Active: true},
	}, nil
}

// ApprovePayment completes a pending transaction immediately
func (c *Client) ApprovePayment(reference string) {
	c.completePayment(reference)
}

// FailPayment marks a transaction failed
func (c *Client) FailPayment(reference string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tx, ok := c.transactions[reference]; ok {
		tx.status = gateway.StatusFailed
		c.logger.Info("Mock gateway: payment failed", zap.String("reference", reference))
	}
}

// Reset clears all stored transactions and cancels pending completions,
// restoring the client for the next test.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, timer := range c.timers {
		timer.Stop()
	}
	c.timers = nil
	c.transactions = make(map[string]*transaction)
	c.logger.Info("Mock gateway: state cleared")
}

func (c *Client) completePayment(reference string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, ok := c.transactions[reference]
	if !ok || tx.status != gateway.StatusPending {
		return
	}

	now := time.Now()
	tx.status = gateway.StatusSuccess
	tx.paidAt = &now
	c.logger.Info("Mock gateway: payment completed", zap.String("reference", reference))
}

func (c *Client) simulateDelay(ctx context.Context) error {
	if c.config.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(c.config.Delay):
		return nil
	case <-ctx.Done():
		return domainErrors.NewGatewayTimeoutError(ctx.Err())
	}
}
