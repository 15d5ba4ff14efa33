package dto

import "time"

type CheckInRequest struct {
	VehicleID string `json:"vehicle_id" binding:"required,uuid"`
}

type UpdateCheckInOutRequest struct {
	CheckedOutAt *time.Time `json:"checked_out_at"`
}
