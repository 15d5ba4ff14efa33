package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TripPending    = "pending"
	TripInProgress = "in_progress"
	TripCompleted  = "completed"
)

// Trip. DriverID references drivers.id. Status is derived from EndTime
// presence and kept in sync by the BeforeSave hook.
type Trip struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DriverID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"driver_id"`
	Driver        *Driver    `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	VehicleID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Vehicle       *Vehicle   `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	StartLocation string     `gorm:"size:255;not null" json:"start_location"`
	EndLocation   string     `gorm:"size:255;not null" json:"end_location"`
	StartTime     time.Time  `gorm:"not null" json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	Amount        *float64   `json:"amount,omitempty"`
	Status        string     `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Trip) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *Trip) BeforeSave(tx *gorm.DB) error {
	t.Status = DeriveTripStatus(t.StartTime, t.EndTime, time.Now())
	return nil
}

// DeriveTripStatus maps the trip times onto a status: completed once an
// end time exists, pending until the start time is reached, otherwise
// in progress.
func DeriveTripStatus(start time.Time, end *time.Time, now time.Time) string {
	if end != nil {
		return TripCompleted
	}
	if start.After(now) {
		return TripPending
	}
	return TripInProgress
}

func (t *Trip) IsCompleted() bool {
	return t.EndTime != nil
}
