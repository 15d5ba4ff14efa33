package dto

type CreateVehicleRequest struct {
	Manufacturer  string  `json:"manufacturer" binding:"required,max=100"`
	Model         string  `json:"model" binding:"required,max=100"`
	Year          int     `json:"year" binding:"required,min=1900"`
	PlateNumber   string  `json:"plate_number" binding:"required,max=20"`
	OwnershipType string  `json:"ownership_type" binding:"omitempty,oneof=organization individual"`
	OwnerID       *string `json:"owner_id" binding:"omitempty,uuid"`
}

type UpdateVehicleRequest struct {
	Manufacturer  *string `json:"manufacturer" binding:"omitempty,max=100"`
	Model         *string `json:"model" binding:"omitempty,max=100"`
	Year          *int    `json:"year" binding:"omitempty,min=1900"`
	PlateNumber   *string `json:"plate_number" binding:"omitempty,max=20"`
	OwnershipType *string `json:"ownership_type" binding:"omitempty,oneof=organization individual"`
	OwnerID       *string `json:"owner_id" binding:"omitempty,uuid"`
}
