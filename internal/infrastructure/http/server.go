package http

import (
	"context"
	"fmt"
	"net/http"

	handlers "github.com/kiyumart/payment-service/internal/adapter/handler/http"
	"github.com/kiyumart/payment-service/internal/config"
	domainGateway "github.com/kiyumart/payment-service/internal/domain/gateway"
	"github.com/kiyumart/payment-service/internal/infrastructure/database"
	"github.com/kiyumart/payment-service/internal/middleware/auth"
	"github.com/kiyumart/payment-service/internal/usecase"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Server struct {
	config  *config.Config
	logger  *zap.Logger
	echo    *echo.Echo
	repos   *database.Repositories
	gateway domainGateway.PaymentGateway
}

func NewServer(cfg *config.Config, logger *zap.Logger, repos *database.Repositories, gw domainGateway.PaymentGateway) *Server {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	return &Server{
		config:  cfg,
		logger:  logger,
		echo:    e,
		repos:   repos,
		gateway: gw,
	}
}

func (s *Server) Start() error {
	if err := s.setupRoutes(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() error {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "payment",
		})
	})

	commissionRate, err := decimal.NewFromString(s.config.Service.CommissionRate)
	if err != nil {
		return fmt.Errorf("invalid commission rate %q: %w", s.config.Service.CommissionRate, err)
	}

	// Usecases
	audit := usecase.NewAuditRecorder(s.repos.Audit, s.logger)
	settlement := usecase.NewSettlementService(s.repos.Commission, audit, s.logger)
	webhookService := usecase.NewWebhookService(
		s.repos.Webhook, s.gateway, s.repos.Transaction, settlement, audit, commissionRate, s.logger)
	checkoutService := usecase.NewCheckoutService(s.gateway, s.repos.Transaction, audit, s.logger)
	payoutService := usecase.NewPayoutService(s.gateway, s.repos.PayoutAccount, audit, s.logger)

	// Handlers
	webhookHandler := handlers.NewWebhookHandler(s.logger, s.config.Service.Paystack.WebhookSecret, webhookService)
	checkoutHandler := handlers.NewCheckoutHandler(s.logger, checkoutService)
	bankHandler := handlers.NewBankHandler(s.logger, payoutService)
	adminHandler := handlers.NewAdminHandler(s.logger, s.repos.Audit, s.repos.Webhook, s.repos.Commission)

	jwtConfig := auth.JWTConfig{
		Secret: s.config.Service.JWTSecret,
		Logger: s.logger,
	}

	// API routes
	api := s.echo.Group("/api")

	// Public routes
	api.GET("/banks", bankHandler.ListBanks)
	api.GET("/payments/verify/:reference", checkoutHandler.VerifyPayment)

	// Authenticated routes
	protected := api.Group("", auth.JWTMiddleware(jwtConfig))
	protected.POST("/payments/initialize", checkoutHandler.InitializePayment)
	protected.POST("/banks/resolve", bankHandler.ResolveBankAccount)

	seller := protected.Group("/seller", auth.RequireRole(s.logger, "seller", "admin"))
	seller.PUT("/payout-account", bankHandler.SetPayoutAccount)
	seller.GET("/payout-account", bankHandler.GetPayoutAccount)

	admin := protected.Group("/admin", auth.RequireRole(s.logger, "admin"))
	admin.GET("/audit-logs", adminHandler.ListAuditLogs)
	admin.GET("/webhook-events", adminHandler.ListWebhookEvents)
	admin.GET("/commissions", adminHandler.ListCommissions)

	// Webhook route (outside API versioning; authenticated by signature)
	s.echo.POST("/webhook/paystack", webhookHandler.HandleWebhook)

	return nil
}
