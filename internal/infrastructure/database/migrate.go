package database

import (
	"github.com/kiyumart/payment-service/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&model.User{},
		&model.Transaction{},
		&model.WebhookEvent{},
		&model.Commission{},
		&model.PayoutAccount{},
		&model.AuditLog{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates indexes GORM does not handle automatically
func createCustomIndexes(db *gorm.DB) error {
	// Events still awaiting processing or retry, ordered pickup
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_webhook_events_unprocessed ON webhook_events (created_at) WHERE status IN ('received', 'failed')`).Error; err != nil {
		return err
	}

	// Audit trail lookups per target
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_audit_logs_target ON audit_logs (target_type, target_id) WHERE target_id IS NOT NULL`).Error; err != nil {
		return err
	}

	return nil
}
