package attendance

import (
	"time"

	"hrms-lite/internal/shared/clock"
)

type MarkAttendanceRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Status     string `json:"status" validate:"required,oneof=Present Absent"`
}

type AttendanceResponse struct {
	ID                 string    `json:"id"`
	EmployeeID         string    `json:"employee_id"`
	Date               string    `json:"date"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	EmployeeName       string    `json:"employee_name,omitempty"`
	EmployeeEmployeeID string    `json:"employee_employee_id,omitempty"`
	Department         string    `json:"department,omitempty"`
}

// AttendanceFilter narrows GetAll. Every field is optional; Departments
// applies only when non-empty.
type AttendanceFilter struct {
	EmployeeID  string
	From        *time.Time
	To          *time.Time
	Departments []string
}

type SummaryResponse struct {
	EmployeeID string  `json:"employee_id"`
	FromDate   *string `json:"from_date,omitempty"`
	ToDate     *string `json:"to_date,omitempty"`
	Present    int64   `json:"present"`
	Absent     int64   `json:"absent"`
	Total      int64   `json:"total"`
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:         a.ID.String(),
		EmployeeID: a.EmployeeID.String(),
		Date:       a.Date.Format(clock.DateLayout),
		Status:     a.Status,
		CreatedAt:  a.CreatedAt,
	}
	if a.Employee != nil {
		resp.EmployeeName = a.Employee.FullName
		resp.EmployeeEmployeeID = a.Employee.EmployeeCode
		resp.Department = a.Employee.Department
	}
	return resp
}

func mapToListResponse(rows []Attendance) []AttendanceResponse {
	res := make([]AttendanceResponse, 0, len(rows))
	for _, r := range rows {
		res = append(res, mapToResponse(r))
	}
	return res
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(clock.DateLayout)
	return &s
}
