package apperror

import (
	"errors"
	"net/http"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

var statusByCode = map[string]int{
	CodeValidation:          http.StatusBadRequest,
	CodeEmployeeNotFound:    http.StatusNotFound,
	CodeDuplicateEmployee:   http.StatusBadRequest,
	CodeDuplicateAttendance: http.StatusBadRequest,
	CodeInvalidDate:         http.StatusBadRequest,
	CodeRateLimited:         http.StatusTooManyRequests,
	CodeProcessing:          http.StatusConflict,
	CodeStore:               http.StatusInternalServerError,
	CodeInternalError:       http.StatusInternalServerError,
}

// ToHTTP is the only place where an error kind becomes a status code.
// Anything without a known code is answered as a bad request.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		msg := "Bad request"
		if err != nil {
			msg = err.Error()
		}
		return HTTPError{Status: http.StatusBadRequest, Code: CodeBadRequest, Message: msg}
	}

	status, ok := statusByCode[appErr.Code]
	if !ok {
		status = http.StatusBadRequest
	}

	// Message never carries the wrapped cause, so driver text stays in logs.
	return HTTPError{
		Status:  status,
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}
}
