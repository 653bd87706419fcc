package model

import (
	"database/sql/driver"
	"time"
)

// WebhookStatus represents the processing status of a webhook event
type WebhookStatus string

const (
	WebhookStatusReceived  WebhookStatus = "received"
	WebhookStatusProcessed WebhookStatus = "processed"
	WebhookStatusFailed    WebhookStatus = "failed"
)

// Scan implements sql.Scanner interface
func (w *WebhookStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*w = WebhookStatus(v)
	case []byte:
		*w = WebhookStatus(v)
	default:
		*w = WebhookStatusReceived
	}
	return nil
}

// Value implements driver.Valuer interface
func (w WebhookStatus) Value() (driver.Value, error) {
	return string(w), nil
}

// WebhookEvent is the durable ledger row for a provider webhook delivery.
// Exactly one row exists per provider event ID; the unique index on EventID
// is what makes duplicate deliveries converge on a single row.
type WebhookEvent struct {
	ID          int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID     string        `gorm:"column:event_id;unique;not null;size:255" json:"event_id"`
	Reference   *string       `gorm:"size:255;index" json:"reference,omitempty"`
	EventType   string        `gorm:"not null;size:100;index" json:"event_type"`
	Status      WebhookStatus `gorm:"size:20;default:'received';index" json:"status"`
	RawPayload  JSONB         `gorm:"type:jsonb;not null" json:"raw_payload"`
	ProcessedAt *time.Time    `json:"processed_at,omitempty"`
	CreatedAt   time.Time     `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
