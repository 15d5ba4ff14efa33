package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OwnershipOrganization = "organization"
	OwnershipIndividual   = "individual"
)

// Vehicle is a fleet vehicle. OwnerID is set iff the vehicle is
// individually owned; organization vehicles carry no owner.
type Vehicle struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Manufacturer  string     `gorm:"size:100;not null" json:"manufacturer"`
	Model         string     `gorm:"size:100;not null" json:"model"`
	Year          int        `gorm:"not null" json:"year"`
	PlateNumber   string     `gorm:"size:20;uniqueIndex;not null" json:"plate_number"`
	OwnershipType string     `gorm:"size:20;not null;default:organization" json:"ownership_type"`
	OwnerID       *uuid.UUID `gorm:"type:uuid" json:"owner_id,omitempty"`
	Owner         *User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CreatedBy     *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	UpdatedBy     *uuid.UUID `gorm:"type:uuid" json:"updated_by,omitempty"`
	Driver        *Driver    `gorm:"foreignKey:VehicleID" json:"driver,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
