package payroll

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
)

// validateEntries rejects entries the hours cannot be derived from.
func validateEntries(entries []attendance.TimeEntry) ([]attendance.TimeEntry, error) {
	sorted := make([]attendance.TimeEntry, 0, len(entries))
	for _, e := range entries {
		switch {
		case e.ClockIn == nil:
			return nil, fmt.Errorf("%w: entry %s on %s: %w", payroll.ErrInvalidTimeFacts, e.ID, payroll.DateKey(e.Date), attendance.ErrMissingClockIn)
		case e.ClockOut == nil:
			return nil, fmt.Errorf("%w: entry %s on %s: %w", payroll.ErrInvalidTimeFacts, e.ID, payroll.DateKey(e.Date), attendance.ErrMissingClockOut)
		case !e.ClockOut.After(*e.ClockIn):
			return nil, fmt.Errorf("%w: entry %s on %s: %w", payroll.ErrInvalidTimeFacts, e.ID, payroll.DateKey(e.Date), attendance.ErrNonPositiveSpan)
		}
		sorted = append(sorted, e)
	}

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ClockIn.Before(*sorted[j].ClockIn)
	})
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.ClockIn.Before(*prev.ClockOut) {
			return nil, fmt.Errorf("%w: entries %s and %s: %w", payroll.ErrInvalidTimeFacts, prev.ID, cur.ID, attendance.ErrOverlap)
		}
	}
	return sorted, nil
}

// nightOverlap returns how much of [in, out) falls inside the nightly window
// [start, end) measured from midnight in the clock-in location. The window
// wraps midnight when end is not after start.
func nightOverlap(in, out time.Time, start, end time.Duration) time.Duration {
	if start == end {
		return 0
	}
	day := time.Date(in.Year(), in.Month(), in.Day(), 0, 0, 0, 0, in.Location()).AddDate(0, 0, -1)
	var total time.Duration
	for !day.After(out) {
		ws := day.Add(start)
		we := day.Add(end)
		if end < start {
			we = day.AddDate(0, 0, 1).Add(end)
		}
		total += overlap(in, out, ws, we)
		day = day.AddDate(0, 0, 1)
	}
	return total
}

func overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	s := aStart
	if bStart.After(s) {
		s = bStart
	}
	e := aEnd
	if bEnd.Before(e) {
		e = bEnd
	}
	if !e.After(s) {
		return 0
	}
	return e.Sub(s)
}

type dayTime struct {
	worked time.Duration
	night  time.Duration
}

// reconstructTime derives the per-date breakdown and its summary for one
// employee. Only entries dated inside the period are counted.
func reconstructTime(rc payroll.RunContext, entries []attendance.TimeEntry) ([]payroll.DayBreakdown, payroll.HourSummary, error) {
	var summary payroll.HourSummary

	inPeriod := make([]attendance.TimeEntry, 0, len(entries))
	for _, e := range entries {
		if rc.InPeriod(e.Date) {
			inPeriod = append(inPeriod, e)
		}
	}
	valid, err := validateEntries(inPeriod)
	if err != nil {
		return nil, summary, err
	}

	settings := rc.Settings()
	byDate := make(map[string]*dayTime, len(valid))
	for _, e := range valid {
		key := payroll.DateKey(e.Date)
		dt, ok := byDate[key]
		if !ok {
			dt = &dayTime{}
			byDate[key] = dt
		}
		dt.worked += e.ClockOut.Sub(*e.ClockIn)
		dt.night += nightOverlap(*e.ClockIn, *e.ClockOut, settings.NightShiftStart, settings.NightShiftEnd)
	}

	standard := int(settings.StandardDailyHours.Mul(sixty).IntPart())
	firstBand := int(settings.OvertimeFirstBandHours.Mul(sixty).IntPart())

	var days []payroll.DayBreakdown
	for d := rc.PeriodStart(); !d.After(rc.PeriodEnd()); d = d.AddDate(0, 0, 1) {
		day := payroll.DayBreakdown{Date: d, WorkingDay: rc.IsWorkingDay(d)}
		if dt, ok := byDate[payroll.DateKey(d)]; ok {
			worked := int(dt.worked / time.Minute)
			day.Worked = true
			day.NightMinutes = int(dt.night / time.Minute)
			if day.WorkingDay {
				day.NormalMinutes = min(worked, standard)
				excess := worked - day.NormalMinutes
				day.Overtime25Minutes = min(excess, firstBand)
				day.Overtime35Minutes = excess - day.Overtime25Minutes
				summary.WorkedDays++
			} else {
				day.Overtime100Minutes = worked
			}
		}

		summary.NormalMinutes += day.NormalMinutes
		summary.Overtime25Minutes += day.Overtime25Minutes
		summary.Overtime35Minutes += day.Overtime35Minutes
		summary.Overtime100Minutes += day.Overtime100Minutes
		summary.NightMinutes += day.NightMinutes
		days = append(days, day)
	}

	return days, summary, nil
}
