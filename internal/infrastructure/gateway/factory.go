package gateway

import (
	"fmt"

	"github.com/kiyumart/payment-service/internal/config"
	domainGateway "github.com/kiyumart/payment-service/internal/domain/gateway"
	"github.com/kiyumart/payment-service/internal/infrastructure/gateway/mock"
	"github.com/kiyumart/payment-service/internal/infrastructure/gateway/paystack"
	"go.uber.org/zap"
)

// NewGateway builds the configured payment gateway: the live Paystack client
// in production, the deterministic mock when the config asks for it.
func NewGateway(cfg *config.ServiceConfig, logger *zap.Logger) (domainGateway.PaymentGateway, error) {
	if cfg.Paystack.UseMock {
		logger.Info("Using mock payment gateway",
			zap.Bool("auto_approve", cfg.Paystack.Mock.AutoApprove),
			zap.Int("failure_rate", cfg.Paystack.Mock.FailureRate))
		return mock.NewClient(mock.Config{
			AutoApprove: cfg.Paystack.Mock.AutoApprove,
			FailureRate: cfg.Paystack.Mock.FailureRate,
			Delay:       cfg.Paystack.Mock.Delay.Std(),
		}, logger), nil
	}

	if cfg.Paystack.SecretKey == "" {
		return nil, fmt.Errorf("paystack secret key not configured")
	}
	return paystack.NewClient(cfg.Paystack.SecretKey, logger), nil
}
