package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission is the platform's cut of a paid order, derived exactly once per
// order. The unique index on OrderID is the idempotency key: a second
// settlement attempt for the same order must converge on this row.
type Commission struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID           string          `gorm:"column:order_id;unique;not null;size:100" json:"order_id"`
	OrderAmountMinor  int64           `gorm:"column:order_amount;not null" json:"order_amount"`
	CommissionRate    decimal.Decimal `gorm:"type:decimal(6,4);not null" json:"commission_rate"`
	CommissionMinor   int64           `gorm:"column:commission_amount;not null" json:"commission_amount"`
	SellerPayoutMinor int64           `gorm:"column:seller_payout;not null" json:"seller_payout"`
	CreatedAt         time.Time       `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Commission) TableName() string {
	return "commissions"
}
