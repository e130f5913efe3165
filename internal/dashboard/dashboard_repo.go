package dashboard

import (
	"context"
	"time"

	"hrms-lite/internal/attendance"
	"hrms-lite/internal/shared/clock"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CountEmployees(ctx context.Context) (int64, error)
	CountByStatusOn(ctx context.Context, date time.Time) ([]attendance.StatusCount, error)
	RecentActivity(ctx context.Context, limit int) ([]attendance.Attendance, error)
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

func (r *repository) CountEmployees(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&attendance.EmployeeRef{}).
		Count(&count).Error
	return count, err
}

func (r *repository) CountByStatusOn(ctx context.Context, date time.Time) ([]attendance.StatusCount, error) {
	var rows []attendance.StatusCount
	err := r.db.WithContext(ctx).
		Model(&attendance.Attendance{}).
		Select("status, COUNT(*) AS count").
		Where("date = ?", date.Format(clock.DateLayout)).
		Group("status").
		Scan(&rows).Error
	return rows, err
}

// RecentActivity returns the newest attendance rows by insertion time with
// their owning employee preloaded.
func (r *repository) RecentActivity(ctx context.Context, limit int) ([]attendance.Attendance, error) {
	var rows []attendance.Attendance
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
