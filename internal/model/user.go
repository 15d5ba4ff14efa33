package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role names seeded at system setup. The set is immutable at runtime.
const (
	RoleAdmin        = "admin"
	RoleManager      = "manager"
	RoleDriver       = "driver"
	RoleGateSecurity = "gate_security"
	RoleVehicleOwner = "vehicle_owner"
	RoleStaff        = "staff"
	RoleVisitor      = "visitor"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Phone        *string   `gorm:"size:20" json:"phone,omitempty"`
	AvatarURL    *string   `gorm:"type:text" json:"avatar_url,omitempty"`
	RoleID       *uint     `json:"role_id"`
	Role         *Role     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"role,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// RoleName returns the user's effective role, or "" when none is assigned.
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}
