package errors

import (
	"errors"
	"fmt"
)

// GatewayError represents errors returned by or on the way to the payment
// gateway. Retryable marks transport-level failures (timeouts, connection
// errors, 5xx) that the caller may safely retry; integration bugs such as an
// unknown reference are not retryable.
type GatewayError struct {
	Code      string
	Message   string
	Details   string
	Retryable bool
	Cause     error
}

func (e *GatewayError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("gateway error %s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("gateway error %s: %s", e.Code, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// Gateway error codes
const (
	GatewayCodeTimeout     = "GATEWAY_TIMEOUT"
	GatewayCodeUnavailable = "GATEWAY_UNAVAILABLE"
	GatewayCodeRequest     = "REQUEST_ERROR"
	GatewayCodeResponse    = "RESPONSE_ERROR"
	GatewayCodeDeclined    = "DECLINED"
)

// NewGatewayTimeoutError creates a retryable timeout error
func NewGatewayTimeoutError(cause error) *GatewayError {
	return &GatewayError{
		Code:      GatewayCodeTimeout,
		Message:   "gateway request timed out",
		Retryable: true,
		Cause:     cause,
	}
}

// NewGatewayUnavailableError creates a retryable transport error
func NewGatewayUnavailableError(cause error) *GatewayError {
	return &GatewayError{
		Code:      GatewayCodeUnavailable,
		Message:   "gateway request failed",
		Retryable: true,
		Cause:     cause,
	}
}

// IsRetryable reports whether err is a transient gateway failure worth a
// provider-side retry.
func IsRetryable(err error) bool {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Retryable
	}
	return false
}
