package errors

import "errors"

var (
	// ErrInvalidSignature indicates the webhook payload failed authentication
	ErrInvalidSignature = errors.New("webhook signature verification failed")

	// ErrTransactionNotFound indicates the reference is unknown to the gateway
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrDuplicateReference indicates a transaction already exists for the reference
	ErrDuplicateReference = errors.New("transaction reference already exists")

	// ErrPayoutAccountNotFound indicates the seller has no verified payout account
	ErrPayoutAccountNotFound = errors.New("payout account not found")
)
