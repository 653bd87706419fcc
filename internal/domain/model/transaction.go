package model

import (
	"database/sql/driver"
	"time"
)

// TransactionStatus represents the status of a gateway transaction
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// Scan implements sql.Scanner interface
func (s *TransactionStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = TransactionStatus(v)
	case []byte:
		*s = TransactionStatus(v)
	default:
		*s = TransactionStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (s TransactionStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Transaction is the gateway-side financial record for a checkout attempt.
// Amount, currency and email are fixed at creation; only status and paid_at
// change afterwards, and paid_at is set exactly when status becomes success.
type Transaction struct {
	ID               int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference        string            `gorm:"unique;not null;size:100" json:"reference"`
	AmountMinor      int64             `gorm:"column:amount;not null" json:"amount"`
	Currency         string            `gorm:"size:3;not null;default:'GHS'" json:"currency"`
	Email            string            `gorm:"not null;size:255" json:"email"`
	Status           TransactionStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	AuthorizationURL string            `gorm:"size:500" json:"authorization_url,omitempty"`
	AccessCode       string            `gorm:"size:100" json:"access_code,omitempty"`
	PaidAt           *time.Time        `json:"paid_at,omitempty"`
	Metadata         JSONB             `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt        time.Time         `gorm:"default:now()" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Transaction) TableName() string {
	return "transactions"
}
