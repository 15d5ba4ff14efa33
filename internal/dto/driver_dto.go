package dto

type CreateDriverRequest struct {
	UserID        string  `json:"user_id" binding:"required,uuid"`
	VehicleID     *string `json:"vehicle_id" binding:"omitempty,uuid"`
	LicenseNumber string  `json:"license_number" binding:"required,max=50"`
	PhoneNumber   string  `json:"phone_number" binding:"required,max=20"`
	HomeAddress   string  `json:"home_address" binding:"omitempty,max=255"`
	Sex           string  `json:"sex" binding:"required,oneof=male female other"`
	DriverType    string  `json:"driver_type" binding:"required,oneof=staff visitor organization vehicle_owner"`
}

type UpdateDriverRequest struct {
	UserID        *string `json:"user_id" binding:"omitempty,uuid"`
	VehicleID     *string `json:"vehicle_id" binding:"omitempty,uuid"`
	ClearVehicle  bool    `json:"clear_vehicle"`
	LicenseNumber *string `json:"license_number" binding:"omitempty,max=50"`
	PhoneNumber   *string `json:"phone_number" binding:"omitempty,max=20"`
	HomeAddress   *string `json:"home_address" binding:"omitempty,max=255"`
	Sex           *string `json:"sex" binding:"omitempty,oneof=male female other"`
	DriverType    *string `json:"driver_type" binding:"omitempty,oneof=staff visitor organization vehicle_owner"`
}
