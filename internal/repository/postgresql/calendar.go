package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/calendar"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/database"
)

type calendarRepository struct {
	db *database.DB
}

func NewCalendarRepository(db *database.DB) calendar.CalendarRepository {
	return &calendarRepository{db: db}
}

func (r *calendarRepository) GetRange(ctx context.Context, from, to time.Time) ([]calendar.Day, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT c.id, c.date, c.is_working_day,
			   e.id, e.event_type, e.description
		FROM work_calendar c
		LEFT JOIN calendar_events e ON e.calendar_id = c.id
		WHERE c.date BETWEEN $1 AND $2
		ORDER BY c.date, e.id
	`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get work calendar: %w", err)
	}
	defer rows.Close()

	var days []calendar.Day
	for rows.Next() {
		var day calendar.Day
		var eventID, eventType, description *string
		if err := rows.Scan(&day.ID, &day.Date, &day.IsWorkingDay, &eventID, &eventType, &description); err != nil {
			return nil, err
		}

		// Rows of one date are adjacent; fold their events into a single day.
		if n := len(days); n == 0 || days[n-1].ID != day.ID {
			days = append(days, day)
		}
		if eventID == nil {
			continue
		}
		last := &days[len(days)-1]
		ev := calendar.Event{ID: *eventID, CalendarID: last.ID}
		if eventType != nil {
			ev.Type = calendar.EventType(*eventType)
		}
		if description != nil {
			ev.Description = *description
		}
		last.Events = append(last.Events, ev)
	}

	return days, rows.Err()
}
