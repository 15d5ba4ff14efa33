package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckInOut is a gate event. A record is OPEN while CheckedOutAt is
// null; a vehicle has at most one open record at any time.
type CheckInOut struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	VehicleID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Vehicle      *Vehicle   `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	DriverID     uuid.UUID  `gorm:"type:uuid;not null" json:"driver_id"`
	Driver       *Driver    `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	CheckedInAt  time.Time  `gorm:"not null" json:"checked_in_at"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
	CheckedInBy  *uuid.UUID `gorm:"type:uuid" json:"checked_in_by,omitempty"`
	CheckedOutBy *uuid.UUID `gorm:"type:uuid" json:"checked_out_by,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *CheckInOut) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *CheckInOut) IsOpen() bool {
	return c.CheckedOutAt == nil
}
