package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	domainErrors "github.com/kiyumart/payment-service/internal/domain/errors"
	"github.com/kiyumart/payment-service/internal/domain/model"
	"github.com/kiyumart/payment-service/internal/infrastructure/gateway/paystack"
	"github.com/kiyumart/payment-service/internal/usecase"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PaystackEvent is the inbound webhook payload shape
type PaystackEvent struct {
	Event string            `json:"event"`
	Data  PaystackEventData `json:"data"`
}

// PaystackEventData carries the charge details inside a webhook payload
type PaystackEventData struct {
	ID        int64                  `json:"id"`
	Status    string                 `json:"status"`
	Reference string                 `json:"reference"`
	Amount    int64                  `json:"amount"`
	Currency  string                 `json:"currency"`
	PaidAt    *time.Time             `json:"paid_at"`
	Metadata  map[string]interface{} `json:"metadata"`
	Customer  struct {
		Email string `json:"email"`
	} `json:"customer"`
}

// WebhookHandler terminates the provider webhook endpoint
type WebhookHandler struct {
	logger         *zap.Logger
	webhookSecret  string
	webhookService *usecase.WebhookService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(logger *zap.Logger, webhookSecret string, webhookService *usecase.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		logger:         logger,
		webhookSecret:  webhookSecret,
		webhookService: webhookService,
	}
}

// HandleWebhook authenticates, dedups and applies one provider delivery.
// Duplicates are acked with 200 so the provider stops retrying; processing
// failures return 502 so it retries.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading webhook request body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Error reading request body"})
	}

	// Authentication comes first; unauthenticated payloads never reach the
	// ledger, so no row is created for them.
	sig := c.Request().Header.Get(paystack.SignatureHeader)
	if !paystack.VerifySignature(h.webhookSecret, body, sig) {
		h.logger.Error("Webhook signature verification failed",
			zap.String("remote_ip", c.RealIP()))
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"message": domainErrors.ErrInvalidSignature.Error(),
		})
	}

	var event PaystackEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("Error parsing webhook payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Error parsing webhook payload"})
	}
	if event.Event == "" || event.Data.ID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Malformed webhook payload"})
	}

	var rawPayload model.JSONB
	if err := json.Unmarshal(body, &rawPayload); err != nil {
		rawPayload = model.JSONB{}
	}

	var reference *string
	if event.Data.Reference != "" {
		reference = &event.Data.Reference
	}

	h.logger.Info("Webhook event received",
		zap.String("event", event.Event),
		zap.Int64("data_id", event.Data.ID),
		zap.String("reference", event.Data.Reference))

	result, err := h.webhookService.ProcessEvent(c.Request().Context(), &usecase.EventContext{
		EventID:   eventID(&event),
		EventType: event.Event,
		Reference: reference,
		Payload:   rawPayload,
	})
	if err != nil {
		h.logger.Error("Webhook processing failed",
			zap.String("event", event.Event),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "Event processing failed"})
	}

	if result.AlreadyProcessed {
		return c.JSON(http.StatusOK, echo.Map{"message": "Event already processed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Event processed"})
}

// eventID derives the idempotency key for a delivery. Paystack does not send
// a standalone event ID; the event type plus the provider-side data ID
// identifies one logical event across redeliveries.
func eventID(event *PaystackEvent) string {
	return fmt.Sprintf("%s-%d", event.Event, event.Data.ID)
}
