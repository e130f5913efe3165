package employee

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, emp *Employee) error
	FindAll(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	ExistsByEmployeeCode(ctx context.Context, code string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Search(ctx context.Context, query string) ([]Employee, error)
	ListDepartments(ctx context.Context) ([]string, error)
	DeleteAttendance(ctx context.Context, employeeID string) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
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

func (r *repository) Create(ctx context.Context, emp *Employee) error {
	return r.db.WithContext(ctx).Create(emp).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var emps []Employee
	err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&emps).Error
	return emps, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var emp Employee
	err := r.db.WithContext(ctx).
		First(&emp, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *repository) ExistsByEmployeeCode(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, "employee_id = ?", code)
}

func (r *repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *repository) exists(ctx context.Context, cond string, arg any) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Where(cond, arg).
		Count(&count).Error
	return count > 0, err
}

// Search matches query as a case-insensitive substring of the name, the
// employee code or the email. LIKE wildcards in query match literally.
func (r *repository) Search(ctx context.Context, query string) ([]Employee, error) {
	pattern := "%" + escapeLike(query) + "%"

	var emps []Employee
	err := r.db.WithContext(ctx).
		Where("full_name ILIKE ? OR employee_id ILIKE ? OR email ILIKE ?", pattern, pattern, pattern).
		Order("created_at ASC, id ASC").
		Find(&emps).Error
	return emps, err
}

func (r *repository) ListDepartments(ctx context.Context) ([]string, error) {
	var departments []string
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Distinct("department").
		Order("department ASC").
		Pluck("department", &departments).Error
	return departments, err
}

func (r *repository) DeleteAttendance(ctx context.Context, employeeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Exec("DELETE FROM attendance WHERE employee_id = ?", employeeID)
	return res.RowsAffected, res.Error
}

func (r *repository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).
		Delete(&Employee{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
