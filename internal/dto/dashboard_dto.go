package dto

import "time"

type MaintenanceStats struct {
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
}

type DashboardStats struct {
	Vehicles     int64            `json:"vehicles"`
	Drivers      int64            `json:"drivers"`
	Trips        int64            `json:"trips"`
	Expenses     float64          `json:"expenses"`
	Maintenances MaintenanceStats `json:"maintenances"`
}

// ActivityItem is the uniform shape every entity's recent rows are
// mapped onto before merging into the activity feed.
type ActivityItem struct {
	Type    string    `json:"type"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

type ActivityFilter struct {
	Type    string     `form:"type"`
	Search  string     `form:"search"`
	From    *time.Time `form:"from" time_format:"2006-01-02"`
	To      *time.Time `form:"to" time_format:"2006-01-02"`
	Page    int        `form:"page"`
	PerPage int        `form:"per_page"`
}

type ActivityPage struct {
	Data        []ActivityItem `json:"data"`
	Total       int            `json:"total"`
	CurrentPage int            `json:"current_page"`
	PerPage     int            `json:"per_page"`
	LastPage    int            `json:"last_page"`
}

type TrendPoint struct {
	Month        string  `json:"month"`
	Vehicles     int64   `json:"vehicles"`
	Drivers      int64   `json:"drivers"`
	Expenses     float64 `json:"expenses"`
	Maintenances float64 `json:"maintenances"`
	Trips        int64   `json:"trips"`
}

type GateStats struct {
	VehiclesCheckedInToday  int64 `json:"vehicles_checked_in_today"`
	VehiclesCheckedOutToday int64 `json:"vehicles_checked_out_today"`
	ActiveTrips             int64 `json:"active_trips"`
	VehiclesInside          int64 `json:"vehicles_inside"`
}

type GateAlert struct {
	CheckInID   string    `json:"check_in_id"`
	PlateNumber string    `json:"plate_number"`
	CheckedInAt time.Time `json:"checked_in_at"`
	Duration    string    `json:"duration"`
	Message     string    `json:"message"`
}
