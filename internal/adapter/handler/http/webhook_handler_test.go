package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	handler "github.com/kiyumart/payment-service/internal/adapter/handler/http"
	"github.com/kiyumart/payment-service/internal/adapter/repository"
	"github.com/kiyumart/payment-service/internal/domain/gateway"
	"github.com/kiyumart/payment-service/internal/domain/model"
	"github.com/kiyumart/payment-service/internal/infrastructure/gateway/paystack"
	"github.com/kiyumart/payment-service/internal/usecase"
)

const testWebhookSecret = "whsec_test"

// MockWebhookRepository is a mock implementation of WebhookRepository
type MockWebhookRepository struct {
	mock.Mock
}

func (m *MockWebhookRepository) RegisterEvent(ctx context.Context, eventID string, reference *string, eventType string, rawPayload model.JSONB) bool {
	args := m.Called(ctx, eventID, reference, eventType, rawPayload)
	return args.Bool(0)
}

func (m *MockWebhookRepository) MarkProcessed(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

func (m *MockWebhookRepository) MarkFailed(ctx context.Context, eventID string, cause error) error {
	args := m.Called(ctx, eventID, cause)
	return args.Error(0)
}

func (m *MockWebhookRepository) GetEvent(ctx context.Context, eventID string) (*model.WebhookEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WebhookEvent), args.Error(1)
}

func (m *MockWebhookRepository) ListUnprocessed(ctx context.Context, limit int) ([]*model.WebhookEvent, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*model.WebhookEvent), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByReference(ctx context.Context, reference string) (*model.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) MarkSuccess(ctx context.Context, reference string, paidAt time.Time) error {
	args := m.Called(ctx, reference, paidAt)
	return args.Error(0)
}

func (m *MockTransactionRepository) MarkFailed(ctx context.Context, reference string) error {
	args := m.Called(ctx, reference)
	return args.Error(0)
}

func (m *MockTransactionRepository) List(ctx context.Context, limit, offset int) ([]*model.Transaction, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

// MockCommissionRepository is a mock implementation of CommissionRepository
type MockCommissionRepository struct {
	mock.Mock
}

func (m *MockCommissionRepository) CreateIfAbsent(ctx context.Context, commission *model.Commission) (*model.Commission, bool, error) {
	args := m.Called(ctx, commission)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.Commission), args.Bool(1), args.Error(2)
}

func (m *MockCommissionRepository) GetByOrderID(ctx context.Context, orderID string) (*model.Commission, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Commission), args.Error(1)
}

func (m *MockCommissionRepository) List(ctx context.Context, limit, offset int) ([]*model.Commission, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*model.Commission), args.Error(1)
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, filters repository.AuditFilters) ([]*model.AuditLog, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*model.AuditLog), args.Error(1)
}

// MockPaymentGateway is a mock implementation of gateway.PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) InitializeTransaction(ctx context.Context, req *gateway.InitializeRequest) (*gateway.InitializeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.InitializeResponse), args.Error(1)
}

func (m *MockPaymentGateway) VerifyTransaction(ctx context.Context, reference string) (*gateway.VerifyResponse, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.VerifyResponse), args.Error(1)
}

func (m *MockPaymentGateway) VerifyBankAccount(ctx context.Context, req *gateway.BankAccountRequest) (*gateway.BankAccountResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.BankAccountResponse), args.Error(1)
}

func (m *MockPaymentGateway) ListBanks(ctx context.Context) ([]gateway.Bank, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gateway.Bank), args.Error(1)
}

type webhookFixture struct {
	ledger          *MockWebhookRepository
	gateway         *MockPaymentGateway
	transactionRepo *MockTransactionRepository
	commissionRepo  *MockCommissionRepository
	auditRepo       *MockAuditRepository
	handler         *handler.WebhookHandler
	echo            *echo.Echo
}

func newWebhookFixture() *webhookFixture {
	f := &webhookFixture{
		ledger:          new(MockWebhookRepository),
		gateway:         new(MockPaymentGateway),
		transactionRepo: new(MockTransactionRepository),
		commissionRepo:  new(MockCommissionRepository),
		auditRepo:       new(MockAuditRepository),
		echo:            echo.New(),
	}
	logger := zap.NewNop()
	audit := usecase.NewAuditRecorder(f.auditRepo, logger)
	settlement := usecase.NewSettlementService(f.commissionRepo, audit, logger)
	service := usecase.NewWebhookService(
		f.ledger, f.gateway, f.transactionRepo, settlement, audit,
		decimal.RequireFromString("0.05"), logger)
	f.handler = handler.NewWebhookHandler(logger, testWebhookSecret, service)
	return f
}

func (f *webhookFixture) deliver(t *testing.T, body string, sign bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/paystack", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if sign {
		req.Header.Set(paystack.SignatureHeader, paystack.ComputeSignature(testWebhookSecret, []byte(body)))
	}
	rec := httptest.NewRecorder()
	c := f.echo.NewContext(req, rec)

	err := f.handler.HandleWebhook(c)
	assert.NoError(t, err)
	return rec
}

func chargeSuccessBody(reference string) string {
	return fmt.Sprintf(`{
		"event": "charge.success",
		"data": {
			"id": 1001,
			"status": "success",
			"reference": %q,
			"amount": 10000,
			"currency": "GHS",
			"metadata": {"order_id": "order-42"},
			"customer": {"email": "buyer@example.com"}
		}
	}`, reference)
}

func TestWebhookHandler_InvalidSignature(t *testing.T) {
	f := newWebhookFixture()

	rec := f.deliver(t, chargeSuccessBody("KYM-1"), false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// An unauthenticated delivery must leave no trace in the ledger
	f.ledger.AssertNotCalled(t, "RegisterEvent",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookHandler_TamperedBody(t *testing.T) {
	f := newWebhookFixture()

	body := chargeSuccessBody("KYM-1")
	req := httptest.NewRequest(http.MethodPost, "/webhook/paystack", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(paystack.SignatureHeader,
		paystack.ComputeSignature(testWebhookSecret, []byte(chargeSuccessBody("KYM-OTHER"))))
	rec := httptest.NewRecorder()

	err := f.handler.HandleWebhook(f.echo.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookHandler_ChargeSuccess(t *testing.T) {
	f := newWebhookFixture()
	paidAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	f.ledger.On("RegisterEvent", mock.Anything, "charge.success-1001",
		mock.Anything, "charge.success", mock.Anything).Return(false)
	f.gateway.On("VerifyTransaction", mock.Anything, "KYM-1").Return(&gateway.VerifyResponse{
		Reference: "KYM-1",
		Status:    gateway.StatusSuccess,
		Amount:    10000,
		Currency:  "GHS",
		PaidAt:    &paidAt,
		Metadata:  map[string]interface{}{"order_id": "order-42"},
	}, nil)
	f.transactionRepo.On("MarkSuccess", mock.Anything, "KYM-1", paidAt).Return(nil)
	f.commissionRepo.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(&model.Commission{
		OrderID: "order-42", CommissionMinor: 500, SellerPayoutMinor: 9500,
	}, true, nil)
	f.ledger.On("MarkProcessed", mock.Anything, "charge.success-1001").Return(nil)
	f.auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	rec := f.deliver(t, chargeSuccessBody("KYM-1"), true)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Event processed", resp["message"])
	f.ledger.AssertExpectations(t)
	f.gateway.AssertExpectations(t)
	f.transactionRepo.AssertExpectations(t)
	f.commissionRepo.AssertExpectations(t)
}

func TestWebhookHandler_DuplicateDelivery(t *testing.T) {
	f := newWebhookFixture()

	f.ledger.On("RegisterEvent", mock.Anything, "charge.success-1001",
		mock.Anything, "charge.success", mock.Anything).Return(true)
	f.ledger.On("GetEvent", mock.Anything, "charge.success-1001").Return(&model.WebhookEvent{
		EventID: "charge.success-1001",
		Status:  model.WebhookStatusProcessed,
	}, nil)

	rec := f.deliver(t, chargeSuccessBody("KYM-1"), true)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Event already processed", resp["message"])
	f.gateway.AssertNotCalled(t, "VerifyTransaction", mock.Anything, mock.Anything)
}

func TestWebhookHandler_ProcessingFailure(t *testing.T) {
	f := newWebhookFixture()

	f.ledger.On("RegisterEvent", mock.Anything, "charge.success-1001",
		mock.Anything, "charge.success", mock.Anything).Return(false)
	f.gateway.On("VerifyTransaction", mock.Anything, "KYM-1").Return(nil,
		fmt.Errorf("gateway unreachable"))
	f.ledger.On("MarkFailed", mock.Anything, "charge.success-1001", mock.Anything).Return(nil)

	rec := f.deliver(t, chargeSuccessBody("KYM-1"), true)

	// 502 tells the provider to schedule a redelivery
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	f.ledger.AssertCalled(t, "MarkFailed", mock.Anything, "charge.success-1001", mock.Anything)
}

func TestWebhookHandler_MalformedPayload(t *testing.T) {
	f := newWebhookFixture()

	tests := []struct {
		name string
		body string
	}{
		{"not json", "not-json"},
		{"missing event name", `{"data":{"id":1001}}`},
		{"missing data id", `{"event":"charge.success","data":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.deliver(t, tt.body, true)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	f.ledger.AssertNotCalled(t, "RegisterEvent",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookHandler_UnknownEventType(t *testing.T) {
	f := newWebhookFixture()
	body := `{"event":"subscription.create","data":{"id":7}}`

	f.ledger.On("RegisterEvent", mock.Anything, "subscription.create-7",
		mock.Anything, "subscription.create", mock.Anything).Return(false)
	f.ledger.On("MarkProcessed", mock.Anything, "subscription.create-7").Return(nil)

	rec := f.deliver(t, body, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.ledger.AssertExpectations(t)
}
