package dashboard

import (
	"time"

	"hrms-lite/internal/attendance"
)

const (
	recentActivityLimit = 10

	unknownEmployeeName = "Unknown"
)

type StatsResponse struct {
	TotalEmployees int64          `json:"total_employees"`
	TodayPresent   int64          `json:"today_present"`
	TodayAbsent    int64          `json:"today_absent"`
	TodayTotal     int64          `json:"today_total"`
	RecentActivity []ActivityItem `json:"recent_activity"`
}

type ActivityItem struct {
	ID                 string            `json:"id"`
	EmployeeID         string            `json:"employee_id"`
	EmployeeName       string            `json:"employee_name"`
	EmployeeEmployeeID string            `json:"employee_employee_id"`
	Date               string            `json:"date"`
	Status             attendance.Status `json:"status"`
	CreatedAt          time.Time         `json:"created_at"`
}

// cachedStats stamps a cached snapshot with the calendar day it describes,
// so a snapshot taken before midnight is never served after it.
type cachedStats struct {
	Date  string        `json:"date"`
	Stats StatsResponse `json:"stats"`
}
