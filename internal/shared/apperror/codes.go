package apperror

const (
	// Domain failures
	CodeValidation          = "VALIDATION_ERROR"
	CodeEmployeeNotFound    = "EMPLOYEE_NOT_FOUND"
	CodeDuplicateEmployee   = "DUPLICATE_EMPLOYEE"
	CodeDuplicateAttendance = "DUPLICATE_ATTENDANCE"
	CodeInvalidDate         = "INVALID_DATE"

	// Transport failures raised by middleware
	CodeRateLimited = "RATE_LIMITED"
	CodeProcessing  = "PROCESSING"

	// Server errors (5xx)
	CodeStore         = "STORE_ERROR"
	CodeInternalError = "INTERNAL_ERROR"

	// Fallback for errors that carry no code
	CodeBadRequest = "BAD_REQUEST"
)
