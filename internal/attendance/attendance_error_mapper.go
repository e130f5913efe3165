package attendance

import (
	"errors"
	"strings"

	attendanceerrors "hrms-lite/internal/attendance/errors"
	"hrms-lite/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	constraintEmployeeDate = "uq_attendance_employee_date"

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if pgErr.ConstraintName == constraintEmployeeDate {
				return attendanceerrors.ErrAttendanceAlreadyMarked
			}
		case pgForeignKeyViolation:
			// The owning employee was deleted between the existence check
			// and the insert.
			return attendanceerrors.ErrEmployeeNotFound
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, constraintEmployeeDate) {
		return attendanceerrors.ErrAttendanceAlreadyMarked
	}

	return apperror.Store(err)
}
