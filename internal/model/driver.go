package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DriverTypeStaff        = "staff"
	DriverTypeVisitor      = "visitor"
	DriverTypeOrganization = "organization"
	DriverTypeVehicleOwner = "vehicle_owner"
)

// Driver is a driver profile. One profile per user, and at most one
// driver per vehicle (VehicleID is a unique, nullable assignment).
type Driver struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User          *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	VehicleID     *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"vehicle_id,omitempty"`
	Vehicle       *Vehicle   `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	LicenseNumber string     `gorm:"size:50;uniqueIndex;not null" json:"license_number"`
	PhoneNumber   string     `gorm:"size:20;not null" json:"phone_number"`
	HomeAddress   string     `gorm:"size:255" json:"home_address"`
	Sex           string     `gorm:"size:10;not null" json:"sex"`
	DriverType    string     `gorm:"size:20;not null" json:"driver_type"`
	CreatedBy     *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	UpdatedBy     *uuid.UUID `gorm:"type:uuid" json:"updated_by,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
