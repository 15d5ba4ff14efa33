package dto

import "time"

type CreateTripRequest struct {
	VehicleID     string     `json:"vehicle_id" binding:"required,uuid"`
	StartLocation string     `json:"start_location" binding:"required,max=255"`
	EndLocation   string     `json:"end_location" binding:"required,max=255"`
	StartTime     time.Time  `json:"start_time" binding:"required"`
	EndTime       *time.Time `json:"end_time"`
	Amount        *float64   `json:"amount" binding:"omitempty,min=0"`
}

type UpdateTripRequest struct {
	VehicleID     *string    `json:"vehicle_id" binding:"omitempty,uuid"`
	StartLocation *string    `json:"start_location" binding:"omitempty,max=255"`
	EndLocation   *string    `json:"end_location" binding:"omitempty,max=255"`
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	Amount        *float64   `json:"amount" binding:"omitempty,min=0"`
}
