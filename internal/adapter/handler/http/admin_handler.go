package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kiyumart/payment-service/internal/adapter/repository"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminHandler serves the admin dashboard's read surfaces: audit trail,
// ledger inspection and commission listings.
type AdminHandler struct {
	logger         *zap.Logger
	auditRepo      repository.AuditRepository
	webhookRepo    repository.WebhookRepository
	commissionRepo repository.CommissionRepository
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(logger *zap.Logger, auditRepo repository.AuditRepository, webhookRepo repository.WebhookRepository, commissionRepo repository.CommissionRepository) *AdminHandler {
	return &AdminHandler{
		logger:         logger,
		auditRepo:      auditRepo,
		webhookRepo:    webhookRepo,
		commissionRepo: commissionRepo,
	}
}

// ListAuditLogs returns audit entries, newest first
func (h *AdminHandler) ListAuditLogs(c echo.Context) error {
	filters := repository.AuditFilters{
		Action:     c.QueryParam("action"),
		TargetType: c.QueryParam("target_type"),
		Limit:      queryInt(c, "limit", 50),
		Offset:     queryInt(c, "offset", 0),
	}
	if actor := c.QueryParam("actor_id"); actor != "" {
		if id, err := uuid.Parse(actor); err == nil {
			filters.ActorID = &id
		}
	}
	if since := c.QueryParam("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			filters.Since = &t
		}
	}

	entries, err := h.auditRepo.List(c.Request().Context(), filters)
	if err != nil {
		h.logger.Error("Failed to list audit logs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list audit logs"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"entries": entries,
		"count":   len(entries),
	})
}

// ListWebhookEvents returns ledger rows still awaiting processing or retry
func (h *AdminHandler) ListWebhookEvents(c echo.Context) error {
	limit := queryInt(c, "limit", 50)

	events, err := h.webhookRepo.ListUnprocessed(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list webhook events", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list webhook events"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"events": events,
		"count":  len(events),
	})
}

// ListCommissions returns commission records; orderId narrows to one order
func (h *AdminHandler) ListCommissions(c echo.Context) error {
	ctx := c.Request().Context()

	if orderID := c.QueryParam("orderId"); orderID != "" {
		commission, err := h.commissionRepo.GetByOrderID(ctx, orderID)
		if err != nil {
			h.logger.Error("Failed to get commission",
				zap.String("order_id", orderID),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get commission"})
		}
		if commission == nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "No commission for order"})
		}
		return c.JSON(http.StatusOK, commission)
	}

	commissions, err := h.commissionRepo.List(ctx, queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		h.logger.Error("Failed to list commissions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list commissions"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"commissions": commissions,
		"count":       len(commissions),
	})
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
