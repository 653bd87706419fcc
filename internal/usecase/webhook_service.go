package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/kiyumart/payment-service/internal/adapter/repository"
	"github.com/kiyumart/payment-service/internal/domain/gateway"
	"github.com/kiyumart/payment-service/internal/domain/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EventContext carries one provider event through the dispatch table
type EventContext struct {
	EventID   string
	EventType string
	Reference *string
	Payload   model.JSONB
}

// EventHandlerFunc applies the side effects for one event type
type EventHandlerFunc func(ctx context.Context, event *EventContext) error

// ProcessResult reports how an event delivery was resolved
type ProcessResult struct {
	// AlreadyProcessed is true when the ledger had seen the event before and
	// side effects were not re-run. The caller still acks the delivery.
	AlreadyProcessed bool
}

// WebhookService orchestrates webhook processing: ledger gate, event type
// dispatch, terminal status marking and best-effort audit. It is safe to run
// concurrently for the same event; the ledger insert is the dedup mechanism.
type WebhookService struct {
	ledger          repository.WebhookRepository
	gateway         gateway.PaymentGateway
	transactionRepo repository.TransactionRepository
	settlement      *SettlementService
	audit           AuditRecorder
	commissionRate  decimal.Decimal
	logger          *zap.Logger
	handlers        map[string]EventHandlerFunc
}

// NewWebhookService creates a webhook service with the default dispatch table
func NewWebhookService(
	ledger repository.WebhookRepository,
	gw gateway.PaymentGateway,
	transactionRepo repository.TransactionRepository,
	settlement *SettlementService,
	audit AuditRecorder,
	commissionRate decimal.Decimal,
	logger *zap.Logger,
) *WebhookService {
	s := &WebhookService{
		ledger:          ledger,
		gateway:         gw,
		transactionRepo: transactionRepo,
		settlement:      settlement,
		audit:           audit,
		commissionRate:  commissionRate,
		logger:          logger,
		handlers:        make(map[string]EventHandlerFunc),
	}
	s.handlers["charge.success"] = s.handleChargeSuccess
	return s
}

// RegisterHandler adds or replaces the handler for an event type
func (s *WebhookService) RegisterHandler(eventType string, handler EventHandlerFunc) {
	s.handlers[eventType] = handler
}

// ProcessEvent runs one provider event through the ledger gate and dispatch
// table. Redelivery of an already-registered event is acked without side
// effects; an event whose handler fails is marked failed and the error is
// surfaced so the provider retries. A later redelivery of a failed event is
// processed again: the gate short-circuits on prior existence only for events
// the ledger had not yet seen fail, which is enforced here, not in storage.
func (s *WebhookService) ProcessEvent(ctx context.Context, event *EventContext) (*ProcessResult, error) {
	alreadyProcessed := s.ledger.RegisterEvent(ctx, event.EventID, event.Reference, event.EventType, event.Payload)
	if alreadyProcessed {
		// The prior row may be a failed attempt; those are allowed another
		// run so a transient failure can self-heal on provider retry.
		prior, err := s.ledger.GetEvent(ctx, event.EventID)
		if err != nil || prior == nil || prior.Status != model.WebhookStatusFailed {
			s.logger.Info("Duplicate webhook delivery acknowledged",
				zap.String("event_id", event.EventID),
				zap.String("event_type", event.EventType))
			return &ProcessResult{AlreadyProcessed: true}, nil
		}
		s.logger.Info("Retrying previously failed webhook event",
			zap.String("event_id", event.EventID))
	}

	handler, ok := s.handlers[event.EventType]
	if !ok {
		// Nothing to apply for this event type; record it as handled so the
		// provider does not keep redelivering.
		s.logger.Warn("Unhandled webhook event type",
			zap.String("event_id", event.EventID),
			zap.String("event_type", event.EventType))
		if err := s.ledger.MarkProcessed(ctx, event.EventID); err != nil {
			return nil, err
		}
		return &ProcessResult{}, nil
	}

	if err := handler(ctx, event); err != nil {
		if markErr := s.ledger.MarkFailed(ctx, event.EventID, err); markErr != nil {
			s.logger.Error("Failed to mark webhook event failed",
				zap.String("event_id", event.EventID),
				zap.Error(markErr))
		}
		return nil, fmt.Errorf("webhook event %s: %w", event.EventID, err)
	}

	if err := s.ledger.MarkProcessed(ctx, event.EventID); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "webhook.processed", nil, model.JSONB{
		"event_id":   event.EventID,
		"event_type": event.EventType,
	}, auditTargetForReference(event.Reference))

	return &ProcessResult{}, nil
}

// handleChargeSuccess verifies the charge with the gateway, finalizes the
// transaction record and settles the order's commission.
func (s *WebhookService) handleChargeSuccess(ctx context.Context, event *EventContext) error {
	if event.Reference == nil || *event.Reference == "" {
		return fmt.Errorf("charge.success event %s has no transaction reference", event.EventID)
	}
	reference := *event.Reference

	verification, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return fmt.Errorf("verify transaction %s: %w", reference, err)
	}

	if verification.Status != gateway.StatusSuccess {
		return fmt.Errorf("charge.success event %s: gateway reports status %q for %s",
			event.EventID, verification.Status, reference)
	}

	paidAt := time.Now()
	if verification.PaidAt != nil {
		paidAt = *verification.PaidAt
	}
	if err := s.transactionRepo.MarkSuccess(ctx, reference, paidAt); err != nil {
		return fmt.Errorf("mark transaction success %s: %w", reference, err)
	}

	orderID := reference
	if v, ok := verification.Metadata["order_id"].(string); ok && v != "" {
		orderID = v
	}

	if _, err := s.settlement.SettleOrder(ctx, orderID, verification.Amount, s.commissionRate); err != nil {
		return fmt.Errorf("settle order %s: %w", orderID, err)
	}

	return nil
}

func auditTargetForReference(reference *string) *AuditTarget {
	if reference == nil || *reference == "" {
		return nil
	}
	return &AuditTarget{Type: "transaction", ID: *reference}
}
