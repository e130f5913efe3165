package attendance

import attendanceerrors "hrms-lite/internal/attendance/errors"

// Status is the closed set of attendance outcomes.
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPresent:
		return StatusPresent, nil
	case StatusAbsent:
		return StatusAbsent, nil
	default:
		return "", attendanceerrors.ErrInvalidStatus
	}
}

func (s Status) String() string { return string(s) }
