package attendance

import (
	"context"
	"time"
)

// TimeEntryRepository reads attendance and tareo data owned by the
// attendance subsystem.
type TimeEntryRepository interface {
	// GetByEmployeesInRange returns the entries dated within [from, to] for the
	// given employees, keyed by employee id and ordered by clock-in.
	GetByEmployeesInRange(ctx context.Context, employeeIDs []string, from, to time.Time) (map[string][]TimeEntry, error)
}
