package dto

type CreateMaintenanceRequest struct {
	VehicleID   string  `json:"vehicle_id" binding:"required,uuid"`
	Description string  `json:"description" binding:"required"`
	Status      string  `json:"status" binding:"required"`
	Cost        float64 `json:"cost" binding:"required,min=0"`
	Date        string  `json:"date" binding:"required"`
}

type UpdateMaintenanceRequest struct {
	VehicleID   *string  `json:"vehicle_id" binding:"omitempty,uuid"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	Cost        *float64 `json:"cost" binding:"omitempty,min=0"`
	Date        *string  `json:"date"`
}
