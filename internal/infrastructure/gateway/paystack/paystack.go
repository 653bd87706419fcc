package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainErrors "github.com/kiyumart/payment-service/internal/domain/errors"
	"github.com/kiyumart/payment-service/internal/domain/gateway"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.paystack.co"

// Client is the live Paystack gateway client
type Client struct {
	baseURL   string
	secretKey string
	client    *http.Client
	logger    *zap.Logger
}

// NewClient creates a Paystack client. Requests are bounded by a 30 second
// client timeout; a timeout surfaces as a retryable gateway error.
func NewClient(secretKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:   defaultBaseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
	}
}

// NewClientWithBaseURL creates a client against a non-default API host
func NewClientWithBaseURL(secretKey, baseURL string, logger *zap.Logger) *Client {
	c := NewClient(secretKey, logger)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// envelope is Paystack's standard response wrapper
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	ID        int64                  `json:"id"`
	Status    string                 `json:"status"`
	Reference string                 `json:"reference"`
	Amount    int64                  `json:"amount"`
	PaidAt    *time.Time             `json:"paid_at"`
	Currency  string                 `json:"currency"`
	Metadata  map[string]interface{} `json:"metadata"`
	Customer  struct {
		Email string `json:"email"`
	} `json:"customer"`
}

type resolveData struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankID        int    `json:"bank_id"`
}

// InitializeTransaction creates a transaction with Paystack
// POST /transaction/initialize
func (c *Client) InitializeTransaction(ctx context.Context, req *gateway.InitializeRequest) (*gateway.InitializeResponse, error) {
	body := map[string]interface{}{
		"email":  req.Email,
		"amount": req.Amount,
	}
	if req.Currency != "" {
		body["currency"] = req.Currency
	}
	if req.Reference != "" {
		body["reference"] = req.Reference
	}
	if req.CallbackURL != "" {
		body["callback_url"] = req.CallbackURL
	}
	if len(req.Metadata) > 0 {
		body["metadata"] = req.Metadata
	}

	var data initializeData
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return nil, err
	}

	c.logger.Info("Paystack transaction initialized",
		zap.String("reference", data.Reference))

	return &gateway.InitializeResponse{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

// VerifyTransaction resolves a transaction's status
// GET /transaction/verify/:reference
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*gateway.VerifyResponse, error) {
	var data verifyData
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}

	return &gateway.VerifyResponse{
		Reference:     data.Reference,
		Status:        data.Status,
		Amount:        data.Amount,
		Currency:      data.Currency,
		PaidAt:        data.PaidAt,
		CustomerEmail: data.Customer.Email,
		Metadata:      data.Metadata,
	}, nil
}

// VerifyBankAccount resolves an account holder
// GET /bank/resolve?account_number=...&bank_code=...
func (c *Client) VerifyBankAccount(ctx context.Context, req *gateway.BankAccountRequest) (*gateway.BankAccountResponse, error) {
	var data resolveData
	path := fmt.Sprintf("/bank/resolve?account_number=%s&bank_code=%s",
		url.QueryEscape(req.AccountNumber), url.QueryEscape(req.BankCode))
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}

	return &gateway.BankAccountResponse{
		AccountNumber: data.AccountNumber,
		AccountName:   data.AccountName,
		BankID:        data.BankID,
	}, nil
}

// ListBanks returns Paystack's supported banks
// GET /bank
func (c *Client) ListBanks(ctx context.Context) ([]gateway.Bank, error) {
	var data []gateway.Bank
	if err := c.do(ctx, http.MethodGet, "/bank", nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return &domainErrors.GatewayError{
				Code:    domainErrors.GatewayCodeRequest,
				Message: "failed to prepare request",
				Details: err.Error(),
			}
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &domainErrors.GatewayError{
			Code:    domainErrors.GatewayCodeRequest,
			Message: "failed to create request",
			Details: err.Error(),
		}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			c.logger.Error("Paystack request timed out",
				zap.String("path", path),
				zap.Error(err))
			return domainErrors.NewGatewayTimeoutError(err)
		}
		c.logger.Error("Paystack request failed",
			zap.String("path", path),
			zap.Error(err))
		return domainErrors.NewGatewayUnavailableError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domainErrors.GatewayError{
			Code:    domainErrors.GatewayCodeResponse,
			Message: "failed to read response",
			Details: err.Error(),
		}
	}

	if resp.StatusCode == http.StatusNotFound {
		return domainErrors.ErrTransactionNotFound
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return &domainErrors.GatewayError{
			Code:    domainErrors.GatewayCodeResponse,
			Message: "failed to parse response",
			Details: string(respBody),
		}
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return &domainErrors.GatewayError{
			Code:      domainErrors.GatewayCodeUnavailable,
			Message:   env.Message,
			Details:   string(respBody),
			Retryable: true,
		}
	}

	if !env.Status || resp.StatusCode >= http.StatusBadRequest {
		return &domainErrors.GatewayError{
			Code:    domainErrors.GatewayCodeDeclined,
			Message: env.Message,
			Details: string(respBody),
		}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &domainErrors.GatewayError{
				Code:    domainErrors.GatewayCodeResponse,
				Message: "failed to parse response data",
				Details: err.Error(),
			}
		}
	}

	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
