package apperror

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	caser := cases.Title(language.English)
	return caser.String(s)
}

// MapValidationError turns validator and JSON decoding failures into a
// VALIDATION_ERROR. The message names the first failing field and the
// details list every one of them.
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		details := make([]FieldError, 0, len(errs))
		for _, e := range errs {
			details = append(details, FieldError{Field: e.Field(), Rule: e.Tag(), Param: e.Param()})
		}

		first := errs[0]
		humanReadableField := formatFieldName(first.Field())

		var appErr *AppError
		switch first.Tag() {
		case "required":
			appErr = RequiredField(humanReadableField)
		default:
			appErr = InvalidField(humanReadableField)
		}
		return appErr.WithDetails(details)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return InvalidField(formatFieldName(typeErr.Field))
	}

	return Wrap(err, CodeValidation, "Invalid input")
}
