package model

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents a marketplace role
type UserRole string

const (
	UserRoleBuyer  UserRole = "buyer"
	UserRoleSeller UserRole = "seller"
	UserRoleRider  UserRole = "rider"
	UserRoleAgent  UserRole = "agent"
	UserRoleAdmin  UserRole = "admin"
)

// User is the minimal slice of the marketplace user record this service
// needs: audit writes resolve actor_role from it at write time.
type User struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid" json:"id"`
	Email     string    `gorm:"unique;not null;size:255" json:"email"`
	Role      UserRole  `gorm:"size:20;not null;default:'buyer'" json:"role"`
	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
