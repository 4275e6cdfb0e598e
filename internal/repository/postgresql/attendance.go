package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/database"
)

type timeEntryRepository struct {
	db *database.DB
}

func NewTimeEntryRepository(db *database.DB) attendance.TimeEntryRepository {
	return &timeEntryRepository{db: db}
}

// GetByEmployeesInRange reads attendance marks and, for dates an employee has
// no attendance mark, the tareo task assignments recorded by field foremen.
func (r *timeEntryRepository) GetByEmployeesInRange(ctx context.Context, employeeIDs []string, from, to time.Time) (map[string][]attendance.TimeEntry, error) {
	entries := make(map[string][]attendance.TimeEntry, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return entries, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, date, clock_in, clock_out, NULL::text AS task_code, $4::text AS source
		FROM attendances
		WHERE employee_id = ANY($1::uuid[])
		  AND date BETWEEN $2 AND $3
		  AND status <> 'rejected'
		UNION ALL
		SELECT t.id, t.employee_id, t.date, t.start_time, t.end_time, t.task_code, $5::text AS source
		FROM task_assignments t
		WHERE t.employee_id = ANY($1::uuid[])
		  AND t.date BETWEEN $2 AND $3
		  AND NOT EXISTS (
			SELECT 1 FROM attendances a
			WHERE a.employee_id = t.employee_id AND a.date = t.date AND a.status <> 'rejected'
		  )
		ORDER BY employee_id, clock_in NULLS FIRST
	`

	rows, err := q.Query(ctx, query, employeeIDs, from, to,
		string(attendance.SourceAttendance), string(attendance.SourceTareo))
	if err != nil {
		return nil, fmt.Errorf("failed to get time entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e attendance.TimeEntry
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.Date, &e.ClockIn, &e.ClockOut, &e.TaskCode, &e.Source); err != nil {
			return nil, err
		}
		entries[e.EmployeeID] = append(entries[e.EmployeeID], e)
	}

	return entries, rows.Err()
}
