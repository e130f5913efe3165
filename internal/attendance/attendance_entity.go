package attendance

import (
	"time"

	"github.com/google/uuid"
)

// Attendance is one employee's status for one calendar day. Rows are
// append-only; (employee_id, date) is unique.
type Attendance struct {
	ID         uuid.UUID    `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeID uuid.UUID    `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_attendance_employee_date,priority:1"`
	Date       time.Time    `gorm:"column:date;type:date;not null;uniqueIndex:uq_attendance_employee_date,priority:2;index"`
	Status     Status       `gorm:"column:status;type:varchar(10);not null"`
	CreatedAt  time.Time    `gorm:"column:created_at"`
	Employee   *EmployeeRef `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (Attendance) TableName() string {
	return "attendance"
}

// EmployeeRef is the read-only slice of an employee row that attendance
// listings display.
type EmployeeRef struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeCode string    `gorm:"column:employee_id"`
	FullName     string    `gorm:"column:full_name"`
	Department   string    `gorm:"column:department"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}
