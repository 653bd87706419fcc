package model

import (
	"time"

	"github.com/google/uuid"
)

// PayoutAccount holds a seller's verified bank details for disbursement.
// The account is resolved against the gateway before it is saved, so a row
// existing here implies the account number matched a real bank account.
type PayoutAccount struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID      uuid.UUID `gorm:"column:seller_id;type:uuid;unique;not null" json:"seller_id"`
	BankCode      string    `gorm:"size:10;not null" json:"bank_code"`
	BankName      string    `gorm:"size:100" json:"bank_name"`
	AccountNumber string    `gorm:"size:20;not null" json:"account_number"`
	AccountName   string    `gorm:"size:255;not null" json:"account_name"`
	VerifiedAt    time.Time `gorm:"not null" json:"verified_at"`
	CreatedAt     time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt     time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PayoutAccount) TableName() string {
	return "payout_accounts"
}
