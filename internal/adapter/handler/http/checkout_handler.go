package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	domainErrors "github.com/kiyumart/payment-service/internal/domain/errors"
	"github.com/kiyumart/payment-service/internal/domain/gateway"
	"github.com/kiyumart/payment-service/internal/middleware/auth"
	"github.com/kiyumart/payment-service/internal/usecase"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// InitializePaymentRequest is the checkout initialization request body
type InitializePaymentRequest struct {
	Email       string                 `json:"email" validate:"required,email"`
	Amount      int64                  `json:"amount" validate:"required,gt=0"`
	Currency    string                 `json:"currency" validate:"omitempty,len=3"`
	Reference   string                 `json:"reference" validate:"omitempty,max=100"`
	CallbackURL string                 `json:"callback_url" validate:"omitempty,url"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// CheckoutHandler serves the synchronous payment flow
type CheckoutHandler struct {
	logger          *zap.Logger
	checkoutService *usecase.CheckoutService
	validate        *validator.Validate
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(logger *zap.Logger, checkoutService *usecase.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		logger:          logger,
		checkoutService: checkoutService,
		validate:        validator.New(),
	}
}

// InitializePayment creates a pending transaction and returns the
// authorization URL the client redirects the payer to.
func (h *CheckoutHandler) InitializePayment(c echo.Context) error {
	var req InitializePaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var actorID *uuid.UUID
	if user := auth.GetUser(c); user != nil {
		if id, err := uuid.Parse(user.UserID); err == nil {
			actorID = &id
		}
	}

	resp, err := h.checkoutService.InitializePayment(c.Request().Context(), actorID, &gateway.InitializeRequest{
		Email:       req.Email,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrDuplicateReference) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Reference already used"})
		}
		h.logger.Error("Failed to initialize payment", zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "Failed to initialize payment"})
	}

	return c.JSON(http.StatusOK, resp)
}

// VerifyPayment resolves a transaction's outcome with the gateway
func (h *CheckoutHandler) VerifyPayment(c echo.Context) error {
	reference := c.Param("reference")
	if reference == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Reference is required"})
	}

	verification, err := h.checkoutService.VerifyPayment(c.Request().Context(), reference)
	if err != nil {
		if errors.Is(err, domainErrors.ErrTransactionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Transaction not found"})
		}
		if domainErrors.IsRetryable(err) {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "Gateway unavailable, retry later"})
		}
		h.logger.Error("Failed to verify payment",
			zap.String("reference", reference),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to verify payment"})
	}

	return c.JSON(http.StatusOK, verification)
}
