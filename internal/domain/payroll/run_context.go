package payroll

import (
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/concept"
)

const dateKeyLayout = "2006-01-02"

// RunContext is everything one calculation run shares across its stages.
// It is built once per run and never mutated; accessors return copies.
type RunContext struct {
	payrollID    string
	subsidiaryID string
	periodStart  time.Time
	periodEnd    time.Time
	workingDays  []time.Time
	workingSet   map[string]struct{}
	settings     CompanySettings
	plan         []concept.PlanItem
}

type RunContextParams struct {
	PayrollID    string
	SubsidiaryID string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	WorkingDays  []time.Time
	Settings     CompanySettings
	Plan         []concept.PlanItem
}

func NewRunContext(p RunContextParams) RunContext {
	days := make([]time.Time, len(p.WorkingDays))
	set := make(map[string]struct{}, len(p.WorkingDays))
	for i, d := range p.WorkingDays {
		days[i] = DateOf(d)
		set[DateKey(d)] = struct{}{}
	}
	plan := make([]concept.PlanItem, len(p.Plan))
	copy(plan, p.Plan)

	return RunContext{
		payrollID:    p.PayrollID,
		subsidiaryID: p.SubsidiaryID,
		periodStart:  DateOf(p.PeriodStart),
		periodEnd:    DateOf(p.PeriodEnd),
		workingDays:  days,
		workingSet:   set,
		settings:     p.Settings,
		plan:         plan,
	}
}

func (c RunContext) PayrollID() string         { return c.payrollID }
func (c RunContext) SubsidiaryID() string      { return c.subsidiaryID }
func (c RunContext) PeriodStart() time.Time    { return c.periodStart }
func (c RunContext) PeriodEnd() time.Time      { return c.periodEnd }
func (c RunContext) WorkingDayCount() int      { return len(c.workingDays) }
func (c RunContext) Settings() CompanySettings { return c.settings }

func (c RunContext) WorkingDays() []time.Time {
	out := make([]time.Time, len(c.workingDays))
	copy(out, c.workingDays)
	return out
}

// Plan returns the concept plan in evaluation order.
func (c RunContext) Plan() []concept.PlanItem {
	out := make([]concept.PlanItem, len(c.plan))
	copy(out, c.plan)
	return out
}

func (c RunContext) IsWorkingDay(d time.Time) bool {
	_, ok := c.workingSet[DateKey(d)]
	return ok
}

// InPeriod reports whether d falls within the payroll period.
func (c RunContext) InPeriod(d time.Time) bool {
	day := DateOf(d)
	return !day.Before(c.periodStart) && !day.After(c.periodEnd)
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}
