package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kiyumart/payment-service/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WebhookRepository is the event ledger: it guarantees at-most-once
// application of a provider event's side effects.
type WebhookRepository interface {
	// RegisterEvent inserts a ledger row for the event if none exists.
	// alreadyProcessed is true when a row for the same event ID was already
	// present, whatever its status. When the insert itself cannot be
	// performed the ledger fails closed and reports alreadyProcessed = true:
	// dropping an event is preferred over double-applying financial side
	// effects when idempotency cannot be verified.
	RegisterEvent(ctx context.Context, eventID string, reference *string, eventType string, rawPayload model.JSONB) (alreadyProcessed bool)

	// MarkProcessed moves the event to its terminal processed status.
	// Processed is never reversed; marking an already-processed event again
	// is a no-op.
	MarkProcessed(ctx context.Context, eventID string) error

	// MarkFailed moves the event to failed. A failed row does not block a
	// later redelivery: RegisterEvent short-circuits on existence, and the
	// webhook service re-runs side effects for redeliveries of failed events.
	MarkFailed(ctx context.Context, eventID string, cause error) error

	// GetEvent retrieves a ledger row, nil when absent.
	GetEvent(ctx context.Context, eventID string) (*model.WebhookEvent, error)

	// ListUnprocessed returns events still in received or failed status.
	ListUnprocessed(ctx context.Context, limit int) ([]*model.WebhookEvent, error)
}

type webhookRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookRepository creates a new webhook event ledger
func NewWebhookRepository(db *gorm.DB, logger *zap.Logger) WebhookRepository {
	return &webhookRepository{
		db:     db,
		logger: logger,
	}
}

// RegisterEvent performs an atomic insert-if-absent keyed on event_id.
func (r *webhookRepository) RegisterEvent(ctx context.Context, eventID string, reference *string, eventType string, rawPayload model.JSONB) bool {
	event := &model.WebhookEvent{
		EventID:    eventID,
		Reference:  reference,
		EventType:  eventType,
		Status:     model.WebhookStatusReceived,
		RawPayload: rawPayload,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(event)

	if result.Error != nil {
		// Fail closed: without a confirmed insert we cannot rule out that the
		// event was applied before, so report it as already processed. This
		// drops the event's side effects; log loudly so the outage is visible.
		r.logger.Error("Webhook ledger insert failed, failing closed",
			zap.String("event_id", eventID),
			zap.String("event_type", eventType),
			zap.Error(result.Error))
		return true
	}

	return result.RowsAffected == 0
}

// MarkProcessed marks a webhook event as processed
func (r *webhookRepository) MarkProcessed(ctx context.Context, eventID string) error {
	return r.markTerminal(ctx, eventID, model.WebhookStatusProcessed)
}

// MarkFailed marks a webhook event as failed
func (r *webhookRepository) MarkFailed(ctx context.Context, eventID string, cause error) error {
	r.logger.Warn("Marking webhook event failed",
		zap.String("event_id", eventID),
		zap.Error(cause))
	return r.markTerminal(ctx, eventID, model.WebhookStatusFailed)
}

// markTerminal sets the event's terminal status. Processed rows are excluded
// from the update: when concurrent redeliveries race, one marking processed
// and another failed, processed wins and is never regressed.
func (r *webhookRepository) markTerminal(ctx context.Context, eventID string, status model.WebhookStatus) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("event_id = ? AND status <> ?", eventID, model.WebhookStatusProcessed).
		Updates(map[string]interface{}{
			"status":       status,
			"processed_at": &now,
		})

	if result.Error != nil {
		r.logger.Error("Failed to update webhook event status",
			zap.String("event_id", eventID),
			zap.String("status", string(status)),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update webhook event status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		existing, err := r.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("webhook event not found: %s", eventID)
		}
		return nil
	}

	return nil
}

// GetEvent retrieves a webhook event by provider event ID
func (r *webhookRepository) GetEvent(ctx context.Context, eventID string) (*model.WebhookEvent, error) {
	var event model.WebhookEvent

	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		First(&event).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}

	return &event, nil
}

// ListUnprocessed returns events awaiting processing or retry, oldest first
func (r *webhookRepository) ListUnprocessed(ctx context.Context, limit int) ([]*model.WebhookEvent, error) {
	var events []*model.WebhookEvent

	err := r.db.WithContext(ctx).
		Where("status IN ?", []model.WebhookStatus{model.WebhookStatusReceived, model.WebhookStatusFailed}).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed webhook events: %w", err)
	}

	return events, nil
}
