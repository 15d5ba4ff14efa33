package dto

type CreateExpenseRequest struct {
	VehicleID   string  `json:"vehicle_id" binding:"required,uuid"`
	Amount      float64 `json:"amount" binding:"required,min=0"`
	Description string  `json:"description" binding:"required"`
	Date        string  `json:"date" binding:"required"`
}

type UpdateExpenseRequest struct {
	VehicleID   *string  `json:"vehicle_id" binding:"omitempty,uuid"`
	Amount      *float64 `json:"amount" binding:"omitempty,min=0"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
}
