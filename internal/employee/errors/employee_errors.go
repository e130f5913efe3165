package employeeerrors

import (
	"hrms-lite/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeEmployeeNotFound,
		"Employee not found",
	)
	ErrEmployeeIDAlreadyExists = apperror.New(
		apperror.CodeDuplicateEmployee,
		"Employee ID already exists",
	)
	ErrEmailAlreadyExists = apperror.New(
		apperror.CodeDuplicateEmployee,
		"Email already exists",
	)
)
