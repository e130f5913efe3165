package attendance

import (
	"context"
	"time"

	"hrms-lite/internal/shared/clock"
	"hrms-lite/internal/shared/scope"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, a *Attendance) error
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	ExistsForDate(ctx context.Context, employeeID string, date time.Time) (bool, error)
	FindByEmployee(ctx context.Context, employeeID string, from, to *time.Time) ([]Attendance, error)
	FindAll(ctx context.Context, filter AttendanceFilter) ([]Attendance, error)
	CountByStatus(ctx context.Context, employeeID string, from, to *time.Time) ([]StatusCount, error)
}

type StatusCount struct {
	Status Status
	Count  int64
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Omit("Employee").Create(a).Error
}

func (r *repository) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&EmployeeRef{}).
		Where("id = ?", employeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ExistsForDate(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Where("employee_id = ?", employeeID).
		Where("date = ?", date.Format(clock.DateLayout)).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string, from, to *time.Time) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Scopes(scope.DateRange("date", from, to)).
		Order("date DESC, created_at DESC").
		Find(&rows).Error
	return rows, err
}

// FindAll lists attendance across employees. The employees join is only
// added when the department filter is active.
func (r *repository) FindAll(ctx context.Context, filter AttendanceFilter) ([]Attendance, error) {
	q := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Preload("Employee")

	if len(filter.Departments) > 0 {
		q = q.Select("attendance.*").
			Joins("JOIN employees ON employees.id = attendance.employee_id").
			Scopes(scope.InStrings("employees.department", filter.Departments))
	}
	if filter.EmployeeID != "" {
		q = q.Where("attendance.employee_id = ?", filter.EmployeeID)
	}

	var rows []Attendance
	err := q.
		Scopes(scope.DateRange("attendance.date", filter.From, filter.To)).
		Order("attendance.date DESC, attendance.created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountByStatus(ctx context.Context, employeeID string, from, to *time.Time) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Select("status, COUNT(*) AS count").
		Where("employee_id = ?", employeeID).
		Scopes(scope.DateRange("date", from, to)).
		Group("status").
		Scan(&rows).Error
	return rows, err
}
