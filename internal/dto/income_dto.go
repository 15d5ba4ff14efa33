package dto

type CreateIncomeRequest struct {
	VehicleID   string   `json:"vehicle_id" binding:"required,uuid"`
	DriverID    *string  `json:"driver_id" binding:"omitempty,uuid"`
	Source      string   `json:"source" binding:"required,max=255"`
	Amount      float64  `json:"amount" binding:"required,min=0"`
	Description string   `json:"description"`
	Date        string   `json:"date" binding:"required"`
}

type UpdateIncomeRequest struct {
	VehicleID   *string  `json:"vehicle_id" binding:"omitempty,uuid"`
	DriverID    *string  `json:"driver_id" binding:"omitempty,uuid"`
	Source      *string  `json:"source" binding:"omitempty,max=255"`
	Amount      *float64 `json:"amount" binding:"omitempty,min=0"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
}
