package attendance

import "errors"

var (
	ErrMissingClockIn  = errors.New("time entry has no clock-in")
	ErrMissingClockOut = errors.New("time entry has no clock-out")
	ErrNonPositiveSpan = errors.New("time entry clock-out is not after clock-in")
	ErrOverlap         = errors.New("time entries overlap")
)
