package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/calendar"
)

type CalendarServiceImpl struct {
	calendarRepo calendar.CalendarRepository
}

func NewCalendarService(calendarRepo calendar.CalendarRepository) calendar.CalendarService {
	return &CalendarServiceImpl{calendarRepo: calendarRepo}
}

// Range returns one row per date in [from, to]. Every date must exist in the
// calendar; a gap is a configuration error, never a default.
func (s *CalendarServiceImpl) Range(ctx context.Context, from, to time.Time) ([]calendar.Day, error) {
	from, to = dateOf(from), dateOf(to)
	if to.Before(from) {
		return nil, calendar.ErrInvalidRange
	}

	days, err := s.calendarRepo.GetRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load work calendar: %w", err)
	}

	byDate := make(map[time.Time]calendar.Day, len(days))
	for _, d := range days {
		byDate[dateOf(d.Date)] = d
	}

	result := make([]calendar.Day, 0, len(days))
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		day, ok := byDate[d]
		if !ok {
			return nil, fmt.Errorf("%w: %s", calendar.ErrCalendarDayMissing, d.Format("2006-01-02"))
		}
		result = append(result, day)
	}

	return result, nil
}

// WorkingDays returns the ordered working dates of [from, to]. An interval
// without working days yields an empty list.
func (s *CalendarServiceImpl) WorkingDays(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	days, err := s.Range(ctx, from, to)
	if err != nil {
		return nil, err
	}

	working := make([]time.Time, 0, len(days))
	for _, d := range days {
		if d.IsWorkingDay {
			working = append(working, dateOf(d.Date))
		}
	}
	return working, nil
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
