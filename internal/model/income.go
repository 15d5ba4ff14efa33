package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Income. When TripID is set the row is derived from a completed trip
// and managed by the trip write path.
type Income struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	VehicleID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Vehicle     *Vehicle   `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	DriverID    *uuid.UUID `gorm:"type:uuid" json:"driver_id,omitempty"`
	Driver      *Driver    `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	TripID      *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"trip_id,omitempty"`
	Trip        *Trip      `gorm:"foreignKey:TripID" json:"trip,omitempty"`
	Source      string     `gorm:"size:255;not null" json:"source"`
	Amount      float64    `gorm:"not null" json:"amount"`
	Description string     `gorm:"type:text" json:"description"`
	Date        time.Time  `gorm:"type:date;not null" json:"date"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *Income) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
