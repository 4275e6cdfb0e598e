package calendar

import "errors"

var (
	ErrInvalidRange       = errors.New("calendar range end is before start")
	ErrCalendarDayMissing = errors.New("date missing from work calendar")
)
