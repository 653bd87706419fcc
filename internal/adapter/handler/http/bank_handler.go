package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	domainErrors "github.com/kiyumart/payment-service/internal/domain/errors"
	"github.com/kiyumart/payment-service/internal/middleware/auth"
	"github.com/kiyumart/payment-service/internal/usecase"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ResolveBankAccountRequest identifies a bank account to resolve
type ResolveBankAccountRequest struct {
	AccountNumber string `json:"account_number" validate:"required,numeric,min=8,max=20"`
	BankCode      string `json:"bank_code" validate:"required,numeric"`
}

// BankHandler serves bank reference data and the seller payout setup flow
type BankHandler struct {
	logger        *zap.Logger
	payoutService *usecase.PayoutService
	validate      *validator.Validate
}

// NewBankHandler creates a new bank handler
func NewBankHandler(logger *zap.Logger, payoutService *usecase.PayoutService) *BankHandler {
	return &BankHandler{
		logger:        logger,
		payoutService: payoutService,
		validate:      validator.New(),
	}
}

// ListBanks returns the gateway's supported banks
func (h *BankHandler) ListBanks(c echo.Context) error {
	banks, err := h.payoutService.ListBanks(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to list banks", zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "Failed to list banks"})
	}
	return c.JSON(http.StatusOK, echo.Map{"banks": banks})
}

// ResolveBankAccount looks up an account holder without persisting anything
func (h *BankHandler) ResolveBankAccount(c echo.Context) error {
	var req ResolveBankAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	resolved, err := h.payoutService.ResolveBankAccount(c.Request().Context(), req.AccountNumber, req.BankCode)
	if err != nil {
		if domainErrors.IsRetryable(err) {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "Gateway unavailable, retry later"})
		}
		h.logger.Error("Failed to resolve bank account", zap.Error(err))
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Could not resolve bank account"})
	}

	return c.JSON(http.StatusOK, resolved)
}

// SetPayoutAccount verifies and saves the caller's payout bank account
func (h *BankHandler) SetPayoutAccount(c echo.Context) error {
	user := auth.GetUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}
	sellerID, err := uuid.Parse(user.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}

	var req ResolveBankAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	account, err := h.payoutService.SetPayoutAccount(c.Request().Context(), sellerID, req.AccountNumber, req.BankCode)
	if err != nil {
		if domainErrors.IsRetryable(err) {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "Gateway unavailable, retry later"})
		}
		h.logger.Error("Failed to set payout account",
			zap.String("seller_id", sellerID.String()),
			zap.Error(err))
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Could not verify bank account"})
	}

	return c.JSON(http.StatusOK, account)
}

// GetPayoutAccount returns the caller's saved payout account
func (h *BankHandler) GetPayoutAccount(c echo.Context) error {
	user := auth.GetUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}
	sellerID, err := uuid.Parse(user.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}

	account, err := h.payoutService.GetPayoutAccount(c.Request().Context(), sellerID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrPayoutAccountNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "No payout account on file"})
		}
		h.logger.Error("Failed to get payout account", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get payout account"})
	}

	return c.JSON(http.StatusOK, account)
}
