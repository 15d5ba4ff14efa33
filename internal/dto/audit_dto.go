package dto

type AuditLogQuery struct {
	Search    string `form:"search"`
	LogName   string `form:"log_name"`
	TimeRange string `form:"time_range"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}
