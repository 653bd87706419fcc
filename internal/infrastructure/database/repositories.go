package database

import (
	"github.com/kiyumart/payment-service/internal/adapter/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Webhook       repository.WebhookRepository
	Transaction   repository.TransactionRepository
	Commission    repository.CommissionRepository
	Audit         repository.AuditRepository
	PayoutAccount repository.PayoutAccountRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Webhook:       repository.NewWebhookRepository(db, logger),
		Transaction:   repository.NewTransactionRepository(db, logger),
		Commission:    repository.NewCommissionRepository(db, logger),
		Audit:         repository.NewAuditRepository(db, logger),
		PayoutAccount: repository.NewPayoutAccountRepository(db, logger),
	}
}
