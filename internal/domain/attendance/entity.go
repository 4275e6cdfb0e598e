package attendance

import (
	"time"
)

// TimeEntry is one attendance or tareo (task assignment) record: a span of
// time worked by an employee on a date.
type TimeEntry struct {
	ID         string
	EmployeeID string
	Date       time.Time
	ClockIn    *time.Time
	ClockOut   *time.Time
	TaskCode   *string
	Source     Source
}

type Source string

const (
	SourceAttendance Source = "attendance"
	SourceTareo      Source = "tareo"
)
