package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/kiyumart/payment-service/internal/adapter/repository"
	"github.com/kiyumart/payment-service/internal/domain/model"
	"github.com/kiyumart/payment-service/internal/usecase"
)

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

func newSettlementService(commissionRepo repository.CommissionRepository, auditRepo repository.AuditRepository) *usecase.SettlementService {
	logger := zap.NewNop()
	audit := usecase.NewAuditRecorder(auditRepo, logger)
	return usecase.NewSettlementService(commissionRepo, audit, logger)
}

func TestSettlementService_SettleOrder_Arithmetic(t *testing.T) {
	ctx := context.Background()
	rate := decimal.RequireFromString("0.05")

	tests := []struct {
		name               string
		orderAmount        int64
		expectedCommission int64
		expectedPayout     int64
	}{
		{"whole cedi order", 10000, 500, 9500},
		{"uneven order", 4500, 225, 4275},
		{"sub-half fraction rounds down", 10001, 500, 9501},
		{"half fraction rounds up", 10010, 501, 9509},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockCommissionRepository)
			auditRepo := new(MockAuditRepository)
			auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
			mockRepo.On("CreateIfAbsent", ctx, mock.MatchedBy(func(c *model.Commission) bool {
				return c.CommissionMinor == tt.expectedCommission && c.SellerPayoutMinor == tt.expectedPayout
			})).Return(&model.Commission{
				OrderID:           "order-1",
				OrderAmountMinor:  tt.orderAmount,
				CommissionRate:    rate,
				CommissionMinor:   tt.expectedCommission,
				SellerPayoutMinor: tt.expectedPayout,
			}, true, nil)

			service := newSettlementService(mockRepo, auditRepo)
			commission, err := service.SettleOrder(ctx, "order-1", tt.orderAmount, rate)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedCommission, commission.CommissionMinor)
			assert.Equal(t, tt.expectedPayout, commission.SellerPayoutMinor)
			assert.Equal(t, tt.orderAmount, commission.CommissionMinor+commission.SellerPayoutMinor)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestSettlementService_SettleOrder_Idempotent(t *testing.T) {
	ctx := context.Background()
	rate := decimal.RequireFromString("0.05")

	existing := &model.Commission{
		OrderID:           "order-77",
		OrderAmountMinor:  10000,
		CommissionRate:    rate,
		CommissionMinor:   500,
		SellerPayoutMinor: 9500,
	}

	mockRepo := new(MockCommissionRepository)
	auditRepo := new(MockAuditRepository)
	mockRepo.On("CreateIfAbsent", ctx, mock.Anything).Return(existing, false, nil)

	service := newSettlementService(mockRepo, auditRepo)
	commission, err := service.SettleOrder(ctx, "order-77", 10000, rate)

	assert.NoError(t, err)
	assert.Same(t, existing, commission)
	// Replays do not produce a fresh audit entry
	auditRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSettlementService_SettleOrder_AuditFailureIsolated(t *testing.T) {
	ctx := context.Background()
	rate := decimal.RequireFromString("0.05")

	mockRepo := new(MockCommissionRepository)
	auditRepo := new(MockAuditRepository)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("audit sink down"))
	mockRepo.On("CreateIfAbsent", ctx, mock.Anything).Return(&model.Commission{
		OrderID:           "order-9",
		OrderAmountMinor:  10000,
		CommissionRate:    rate,
		CommissionMinor:   500,
		SellerPayoutMinor: 9500,
	}, true, nil)

	service := newSettlementService(mockRepo, auditRepo)
	commission, err := service.SettleOrder(ctx, "order-9", 10000, rate)

	assert.NoError(t, err)
	assert.NotNil(t, commission)
	auditRepo.AssertExpectations(t)
}

func TestSettlementService_SettleOrder_InvalidInput(t *testing.T) {
	service := newSettlementService(new(MockCommissionRepository), new(MockAuditRepository))
	rate := decimal.RequireFromString("0.05")

	_, err := service.SettleOrder(context.Background(), "", 10000, rate)
	assert.Error(t, err)

	_, err = service.SettleOrder(context.Background(), "order-1", 0, rate)
	assert.Error(t, err)
}

// memoryCommissionRepo provides real insert-if-absent semantics for
// concurrency tests.
type memoryCommissionRepo struct {
	mu   sync.Mutex
	rows map[string]*model.Commission
}

func newMemoryCommissionRepo() *memoryCommissionRepo {
	return &memoryCommissionRepo{rows: make(map[string]*model.Commission)}
}

func (r *memoryCommissionRepo) CreateIfAbsent(_ context.Context, commission *model.Commission) (*model.Commission, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.rows[commission.OrderID]; ok {
		return existing, false, nil
	}
	r.rows[commission.OrderID] = commission
	return commission, true, nil
}

func (r *memoryCommissionRepo) GetByOrderID(_ context.Context, orderID string) (*model.Commission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[orderID], nil
}

func (r *memoryCommissionRepo) List(_ context.Context, _, _ int) ([]*model.Commission, error) {
	return nil, nil
}

func TestSettlementService_SettleOrder_ConcurrentConvergence(t *testing.T) {
	repo := newMemoryCommissionRepo()
	auditRepo := new(MockAuditRepository)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	service := newSettlementService(repo, auditRepo)

	rate := decimal.RequireFromString("0.05")
	var wg sync.WaitGroup
	results := make([]*model.Commission, 20)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			commission, err := service.SettleOrder(context.Background(), "order-concurrent", 10000, rate)
			assert.NoError(t, err)
			results[i] = commission
		}(i)
	}
	wg.Wait()

	assert.Len(t, repo.rows, 1)
	for _, commission := range results {
		assert.Equal(t, int64(500), commission.CommissionMinor)
		assert.Equal(t, int64(9500), commission.SellerPayoutMinor)
	}
}
