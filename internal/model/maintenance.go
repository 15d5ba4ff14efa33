package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Maintenance status values. The mixed casing is part of the stored
// data contract consumed by the SPA.
const (
	MaintenancePending    = "Pending"
	MaintenanceInProgress = "in_progress"
	MaintenanceCompleted  = "Completed"
)

// Maintenance record for a vehicle. Cost is authoritative only once the
// record is Completed, at which point a linked Expense mirrors it.
type Maintenance struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	VehicleID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Vehicle     *Vehicle   `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Status      string     `gorm:"size:20;not null;default:Pending" json:"status"`
	Cost        float64    `gorm:"not null" json:"cost"`
	Date        time.Time  `gorm:"type:date;not null" json:"date"`
	Expense     *Expense   `gorm:"foreignKey:MaintenanceID" json:"expense,omitempty"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	UpdatedBy   *uuid.UUID `gorm:"type:uuid" json:"updated_by,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *Maintenance) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *Maintenance) IsCompleted() bool {
	return m.Status == MaintenanceCompleted
}

// ValidMaintenanceStatus reports whether s is one of the known states.
func ValidMaintenanceStatus(s string) bool {
	switch s {
	case MaintenancePending, MaintenanceInProgress, MaintenanceCompleted:
		return true
	}
	return false
}
