package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit log names, one per entity category.
const (
	LogVehicle     = "vehicle"
	LogDriver      = "driver"
	LogTrip        = "trip"
	LogMaintenance = "maintenance"
	LogExpense     = "expense"
	LogIncome      = "income"
	LogCheckInOut  = "checkinout"
	LogUser        = "user"
)

// AuditLog records who changed what and when. Rows are append-only:
// nothing in the system updates or deletes them.
type AuditLog struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	LogName     string         `gorm:"size:50;not null;index" json:"log_name"`
	Description string         `gorm:"type:text;not null" json:"description"`
	CauserID    *uuid.UUID     `gorm:"type:uuid;index" json:"causer_id,omitempty"`
	Causer      *User          `gorm:"foreignKey:CauserID" json:"causer,omitempty"`
	SubjectType string         `gorm:"size:50;not null" json:"subject_type"`
	SubjectID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"subject_id"`
	OldValues   datatypes.JSON `gorm:"type:jsonb" json:"old_values,omitempty"`
	NewValues   datatypes.JSON `gorm:"type:jsonb" json:"new_values,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
