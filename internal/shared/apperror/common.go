package apperror

var (
	ErrInvalidInput = New(
		CodeValidation,
		"The provided input is invalid",
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
	)
)

// RequiredField reports a missing mandatory field.
func RequiredField(field string) *AppError {
	return New(CodeValidation, field+" is required").
		WithDetails([]FieldError{{Field: field, Rule: "required"}})
}

// InvalidField reports a field that failed a format or range rule.
func InvalidField(field string) *AppError {
	return New(CodeValidation, field+" is invalid").
		WithDetails([]FieldError{{Field: field, Rule: "invalid"}})
}

// Store wraps an unclassified persistence failure.
func Store(err error) *AppError {
	return Wrap(err, CodeStore, "Data store operation failed")
}
