package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Expense. When MaintenanceID is set the row is derived from a Completed
// maintenance record and managed by the maintenance write path.
type Expense struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	VehicleID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Vehicle       *Vehicle     `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	MaintenanceID *uuid.UUID   `gorm:"type:uuid;uniqueIndex" json:"maintenance_id,omitempty"`
	Maintenance   *Maintenance `gorm:"foreignKey:MaintenanceID" json:"maintenance,omitempty"`
	Amount        float64      `gorm:"not null" json:"amount"`
	Description   string       `gorm:"type:text;not null" json:"description"`
	Date          time.Time    `gorm:"type:date;not null" json:"date"`
	CreatedBy     *uuid.UUID   `gorm:"type:uuid" json:"created_by,omitempty"`
	UpdatedBy     *uuid.UUID   `gorm:"type:uuid" json:"updated_by,omitempty"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
