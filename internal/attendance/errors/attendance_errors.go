package attendanceerrors

import (
	"hrms-lite/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeEmployeeNotFound,
		"Employee not found",
	)
	ErrAttendanceAlreadyMarked = apperror.New(
		apperror.CodeDuplicateAttendance,
		"Attendance already marked for this date",
	)
	ErrFutureDate = apperror.New(
		apperror.CodeInvalidDate,
		"Cannot mark attendance for a future date",
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeValidation,
		"Status must be Present or Absent",
	).WithDetails([]apperror.FieldError{{Field: "status", Rule: "oneof", Param: "Present Absent"}})
	ErrInvalidDateRange = apperror.New(
		apperror.CodeValidation,
		"from_date must not be after to_date",
	).WithDetails([]apperror.FieldError{{Field: "from_date", Rule: "ltefield", Param: "to_date"}})
)
