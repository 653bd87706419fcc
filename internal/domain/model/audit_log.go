package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog represents an audit log entry. Rows are append-only and written
// best-effort; a failed write never unwinds the operation being audited.
type AuditLog struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Action     string     `gorm:"not null;size:100;index" json:"action"`
	ActorID    *uuid.UUID `gorm:"column:actor_id;type:uuid;index" json:"actor_id,omitempty"`
	ActorRole  *string    `gorm:"size:20" json:"actor_role,omitempty"`
	TargetType *string    `gorm:"size:50" json:"target_type,omitempty"`
	TargetID   *string    `gorm:"size:100" json:"target_id,omitempty"`
	Metadata   JSONB      `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time  `gorm:"default:now();index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (AuditLog) TableName() string {
	return "audit_logs"
}
