package employee

import (
	"errors"
	"strings"

	employeeerrors "hrms-lite/internal/employee/errors"
	"hrms-lite/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	constraintEmployeeID = "uq_employees_employee_id"
	constraintEmail      = "uq_employees_email"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case constraintEmployeeID:
				return employeeerrors.ErrEmployeeIDAlreadyExists
			case constraintEmail:
				return employeeerrors.ErrEmailAlreadyExists
			}
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, constraintEmployeeID) {
		return employeeerrors.ErrEmployeeIDAlreadyExists
	}
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, constraintEmail) {
		return employeeerrors.ErrEmailAlreadyExists
	}

	return apperror.Store(err)
}
