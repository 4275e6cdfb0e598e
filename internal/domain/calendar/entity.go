package calendar

import "time"

type EventType string

const (
	EventTypeHoliday     EventType = "HOLIDAY"
	EventTypeNonWorking  EventType = "NON_WORKING"
	EventTypeCompanyDay  EventType = "COMPANY_DAY"
	EventTypeRecoverable EventType = "RECOVERABLE"
)

// Day is one row of the work calendar. IsWorkingDay is authoritative; events
// only annotate the date.
type Day struct {
	ID           string
	Date         time.Time
	IsWorkingDay bool
	Events       []Event
}

type Event struct {
	ID          string
	CalendarID  string
	Type        EventType
	Description string
}

// HasEvent reports whether the day carries an event of type t.
func (d Day) HasEvent(t EventType) bool {
	for _, e := range d.Events {
		if e.Type == t {
			return true
		}
	}
	return false
}
