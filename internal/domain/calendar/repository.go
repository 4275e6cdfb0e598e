package calendar

import (
	"context"
	"time"
)

type CalendarRepository interface {
	// GetRange returns the calendar rows between from and to inclusive,
	// ordered by date, with their events loaded.
	GetRange(ctx context.Context, from, to time.Time) ([]Day, error)
}

type CalendarService interface {
	WorkingDays(ctx context.Context, from, to time.Time) ([]time.Time, error)
	Range(ctx context.Context, from, to time.Time) ([]Day, error)
}
