package payroll

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/batch"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/calendar"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/concept"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func clock(day time.Time, hh, mm int) *time.Time {
	t := time.Date(day.Year(), day.Month(), day.Day(), hh, mm, 0, 0, time.UTC)
	return &t
}

func entry(id, employeeID string, day time.Time, inH, inM, outH, outM int) attendance.TimeEntry {
	out := clock(day, outH, outM)
	if outH < inH {
		next := out.AddDate(0, 0, 1)
		out = &next
	}
	return attendance.TimeEntry{
		ID:         id,
		EmployeeID: employeeID,
		Date:       day,
		ClockIn:    clock(day, inH, inM),
		ClockOut:   out,
		Source:     attendance.SourceAttendance,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func defaultSettings() payroll.CompanySettings {
	return payroll.CompanySettings{
		ID:                     "settings",
		OvertimeRate:           dec("0.25"),
		OvertimeSecondRate:     dec("0.35"),
		OvertimeFirstBandHours: dec("2"),
		RestDayOvertimeRate:    dec("1"),
		StandardDailyHours:     dec("8"),
		MonthCalculationDays:   30,
		NightShiftStart:        22 * time.Hour,
		NightShiftEnd:          6 * time.Hour,
	}
}

// julyWorkingDays are the weekdays of July 2024 without the 29th holiday.
func julyWorkingDays() []time.Time {
	var days []time.Time
	for d := date("2024-07-01"); !d.After(date("2024-07-31")); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday || d.Day() == 29 {
			continue
		}
		days = append(days, d)
	}
	return days
}

type fakePayrollRepo struct {
	mu        sync.Mutex
	payrolls  map[string]payroll.Payroll
	settings  *payroll.CompanySettings
	details   *fakeDetailRepo
	markCalls int
}

func (r *fakePayrollRepo) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payrolls[id]
	if !ok {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	return p, nil
}

func (r *fakePayrollRepo) GetCompanySettings(ctx context.Context) (payroll.CompanySettings, error) {
	if r.settings == nil {
		return payroll.CompanySettings{}, payroll.ErrCompanySettingsNotFound
	}
	return *r.settings, nil
}

func (r *fakePayrollRepo) AggregateDetails(ctx context.Context, payrollID string) (payroll.Totals, error) {
	totals := payroll.Totals{
		TotalIncome:     decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNet:        decimal.Zero,
	}
	for _, d := range r.details.forPayroll(payrollID) {
		totals.EmployeeCount++
		totals.TotalIncome = totals.TotalIncome.Add(d.TotalIncome)
		totals.TotalDeductions = totals.TotalDeductions.Add(d.TotalDeductions)
		totals.TotalNet = totals.TotalNet.Add(d.NetPay)
	}
	return totals, nil
}

func (r *fakePayrollRepo) MarkCalculated(ctx context.Context, payrollID string, totals payroll.Totals) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payrolls[payrollID]
	if !ok {
		return payroll.ErrPayrollNotFound
	}
	now := time.Now()
	p.Status = payroll.PayrollStatusCalculated
	p.Totals = totals
	p.CalculatedAt = &now
	r.payrolls[payrollID] = p
	r.markCalls++
	return nil
}

func (r *fakePayrollRepo) ListPendingPayslips(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, p := range r.payrolls {
		if !p.Status.Calculated() {
			continue
		}
		for _, d := range r.details.forPayroll(id) {
			if d.PayslipURL == nil {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type fakeDetailRepo struct {
	mu     sync.Mutex
	rows    map[string]payroll.PayrollDetail // payrollID|employeeID
	written []string
	fail    error
}

func newFakeDetailRepo() *fakeDetailRepo {
	return &fakeDetailRepo{rows: map[string]payroll.PayrollDetail{}}
}

func (r *fakeDetailRepo) UpsertBatch(ctx context.Context, details []payroll.PayrollDetail) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return 0, r.fail
	}
	n := 0
	for _, d := range details {
		key := d.PayrollID + "|" + d.EmployeeID
		if existing, ok := r.rows[key]; ok {
			if existing.PayslipURL != nil {
				continue
			}
			d.ID = existing.ID
		} else {
			d.ID = "detail-" + d.EmployeeID
		}
		r.rows[key] = d
		r.written = append(r.written, d.EmployeeID)
		n++
	}
	return n, nil
}

func (r *fakeDetailRepo) CountWithPayslip(ctx context.Context, payrollID string) (int, error) {
	n := 0
	for _, d := range r.forPayroll(payrollID) {
		if d.PayslipURL != nil {
			n++
		}
	}
	return n, nil
}

func (r *fakeDetailRepo) ListWithoutPayslip(ctx context.Context, payrollID string) ([]payroll.PayrollDetail, error) {
	var out []payroll.PayrollDetail
	for _, d := range r.forPayroll(payrollID) {
		if d.PayslipURL == nil {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDetailRepo) SetPayslipURL(ctx context.Context, detailID string, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, d := range r.rows {
		if d.ID == detailID {
			d.PayslipURL = &url
			r.rows[k] = d
			return nil
		}
	}
	return payroll.ErrPayrollDetailNotFound
}

func (r *fakeDetailRepo) DeleteForEmployees(ctx context.Context, payrollID string, employeeIDs []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, id := range employeeIDs {
		key := payrollID + "|" + id
		if d, ok := r.rows[key]; ok && d.PayslipURL == nil {
			delete(r.rows, key)
			n++
		}
	}
	return n, nil
}

func (r *fakeDetailRepo) DeleteStale(ctx context.Context, payrollID string, executionID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for key, d := range r.rows {
		if d.PayrollID == payrollID && d.ExecutionID != executionID && d.PayslipURL == nil {
			delete(r.rows, key)
			n++
		}
	}
	return n, nil
}

func (r *fakeDetailRepo) forPayroll(payrollID string) []payroll.PayrollDetail {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.PayrollDetail
	for _, d := range r.rows {
		if d.PayrollID == payrollID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}

type fakeConceptRepo struct {
	assignments map[string][]concept.Assignment
}

func (r *fakeConceptRepo) GetAssignmentsByPayrollID(ctx context.Context, payrollID string) ([]concept.Assignment, error) {
	return r.assignments[payrollID], nil
}

func (r *fakeConceptRepo) GetByCode(ctx context.Context, code string) (concept.Concept, error) {
	for _, list := range r.assignments {
		for _, a := range list {
			if a.Concept.Code == code {
				return a.Concept, nil
			}
		}
	}
	return concept.Concept{}, concept.ErrConceptNotFound
}

type fakeCalendarService struct {
	days []time.Time
	err  error
}

func (s *fakeCalendarService) WorkingDays(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]time.Time, 0, len(s.days))
	for _, d := range s.days {
		if !d.Before(from) && !d.After(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *fakeCalendarService) Range(ctx context.Context, from, to time.Time) ([]calendar.Day, error) {
	return nil, nil
}

type fakeEmployeeRepo struct {
	employees []employee.Employee
	reads     []string // AfterID of every ListEligible call
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	for _, e := range r.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) GetByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, id := range ids {
		if e, err := r.GetByID(ctx, id); err == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepo) ListEligible(ctx context.Context, f employee.EligibilityFilter) ([]employee.Employee, error) {
	r.reads = append(r.reads, f.AfterID)
	sorted := make([]employee.Employee, len(r.employees))
	copy(sorted, r.employees)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var out []employee.Employee
	for _, e := range sorted {
		if e.SubsidiaryID != f.SubsidiaryID || e.ID <= f.AfterID || !e.EmployedDuring(f.PeriodStart, f.PeriodEnd) {
			continue
		}
		out = append(out, e)
		if len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

type fakeTimeRepo struct {
	entries map[string][]attendance.TimeEntry
}

func (r *fakeTimeRepo) GetByEmployeesInRange(ctx context.Context, ids []string, from, to time.Time) (map[string][]attendance.TimeEntry, error) {
	out := make(map[string][]attendance.TimeEntry, len(ids))
	for _, id := range ids {
		out[id] = r.entries[id]
	}
	return out, nil
}

type fakeExecRepo struct {
	mu    sync.Mutex
	execs []batch.JobExecution
}

func (r *fakeExecRepo) Create(ctx context.Context, exec batch.JobExecution) (batch.JobExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.execs = append(r.execs, exec)
	return exec, nil
}

func (r *fakeExecRepo) GetLatest(ctx context.Context, job batch.JobName, payrollID string) (batch.JobExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.execs) - 1; i >= 0; i-- {
		if r.execs[i].JobName == job && r.execs[i].PayrollID == payrollID {
			return r.execs[i], nil
		}
	}
	return batch.JobExecution{}, batch.ErrJobExecutionNotFound
}

func (r *fakeExecRepo) ListByPayrollID(ctx context.Context, payrollID string) ([]batch.JobExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []batch.JobExecution
	for _, e := range r.execs {
		if e.PayrollID == payrollID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExecRepo) Update(ctx context.Context, exec batch.JobExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.execs {
		if r.execs[i].ID == exec.ID {
			r.execs[i] = exec
			return nil
		}
	}
	return batch.ErrJobExecutionNotFound
}

// fakeTransactor runs fn directly and calls afterCommit after each success.
type fakeTransactor struct {
	commits     int
	afterCommit func(n int)
}

func (t *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	t.commits++
	if t.afterCommit != nil {
		t.afterCommit(t.commits)
	}
	return nil
}
