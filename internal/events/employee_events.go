package events

import "time"

const EmployeeLifecycleTopic = "hrms.employee.lifecycle.v1"

const (
	EventEmployeeCreated = "employee_created"
	EventEmployeeDeleted = "employee_deleted"
)

type EmployeeCreatedEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeCode string    `json:"employee_code"`
	Department   string    `json:"department"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type EmployeeDeletedEvent struct {
	EventType         string    `json:"event_type"`
	RequestID         string    `json:"request_id,omitempty"`
	EmployeeID        string    `json:"employee_id"`
	EmployeeCode      string    `json:"employee_code"`
	AttendanceRemoved int64     `json:"attendance_removed"`
	OccurredAt        time.Time `json:"occurred_at"`
}
