package employee

import (
	"time"

	"github.com/google/uuid"
)

// Employee is a directory entry. EmployeeCode is the human assigned
// identifier stored in the employee_id column; ID is the surrogate key
// attendance rows point at.
type Employee struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeCode string    `gorm:"column:employee_id;size:20;not null;uniqueIndex:uq_employees_employee_id"`
	FullName     string    `gorm:"size:100;not null"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:uq_employees_email"`
	Department   string    `gorm:"size:50;not null;index"`
	CreatedAt    time.Time
}

func (Employee) TableName() string { return "employees" }
