package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/concept"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var (
	one   = decimal.NewFromInt(1)
	sixty = decimal.NewFromInt(60)
)

// RuleInput is what a derived rule may read. Values only exposes concepts
// evaluated before the current one.
type RuleInput struct {
	Item        concept.PlanItem
	Inputs      []string
	Employee    employee.Employee
	Hours       payroll.HourSummary
	Settings    payroll.CompanySettings
	WorkingDays int
	Income      decimal.Decimal
	Deductions  decimal.Decimal

	values map[string]decimal.Decimal
}

// Value returns the result of an already evaluated concept.
func (in RuleInput) Value(code string) (decimal.Decimal, error) {
	v, ok := in.values[code]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s reads %s", concept.ErrUnresolvedConceptDependency, in.Item.Code, code)
	}
	return v, nil
}

// BaseSalary is the employee's monthly base salary.
func (in RuleInput) BaseSalary() (decimal.Decimal, error) {
	if in.Employee.BaseSalary != nil && in.Employee.BaseSalary.IsPositive() {
		return *in.Employee.BaseSalary, nil
	}
	return decimal.Zero, fmt.Errorf("%w: employee %s", payroll.ErrEmployeeHasNoBaseSalary, in.Employee.ID)
}

// HourlyRate = monthly salary / month calculation days / standard daily hours.
func (in RuleInput) HourlyRate() (decimal.Decimal, error) {
	salary, err := in.BaseSalary()
	if err != nil {
		return decimal.Zero, err
	}
	if in.Settings.MonthCalculationDays <= 0 || !in.Settings.StandardDailyHours.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: month days and daily hours must be positive", payroll.ErrInvalidCompanySettings)
	}
	return salary.
		Div(decimal.NewFromInt(int64(in.Settings.MonthCalculationDays))).
		Div(in.Settings.StandardDailyHours), nil
}

// Rule computes the unrounded amount of a derived concept.
type Rule func(in RuleInput) (decimal.Decimal, error)

// RuleSpec is a registered rule plus the category totals it reads. Every
// concept of a read category must be evaluated before the rule's concept.
type RuleSpec struct {
	Fn             Rule
	Reads          []concept.Category
	RequiresInputs bool
}

type RuleSet map[concept.RuleCode]RuleSpec

// With returns a copy of the set with code registered as spec.
func (rs RuleSet) With(code concept.RuleCode, spec RuleSpec) RuleSet {
	out := make(RuleSet, len(rs)+1)
	for k, v := range rs {
		out[k] = v
	}
	out[code] = spec
	return out
}

func DefaultRules() RuleSet {
	return RuleSet{
		concept.RuleProratedSalary:  {Fn: proratedSalary},
		concept.RuleOvertime:        {Fn: overtimePay},
		concept.RuleNightSurcharge:  {Fn: nightSurcharge},
		concept.RulePercentOfGross:  {Fn: percentOfGross, Reads: []concept.Category{concept.CategoryIncome}},
		concept.RulePercentOfInputs: {Fn: percentOfInputs, RequiresInputs: true},
		concept.RulePercentOfNet: {
			Fn:    percentOfNet,
			Reads: []concept.Category{concept.CategoryIncome, concept.CategoryDeduction},
		},
	}
}

func minutesToHours(m int) decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(sixty)
}

// proratedSalary pays the base salary, or the value pinned on the
// assignment when the employee has none, by worked days.
func proratedSalary(in RuleInput) (decimal.Decimal, error) {
	salary, err := in.BaseSalary()
	if err != nil {
		if !in.Item.Value.IsPositive() {
			return decimal.Zero, err
		}
		salary = in.Item.Value
	}
	if in.WorkingDays == 0 {
		return decimal.Zero, nil
	}
	return salary.
		Mul(decimal.NewFromInt(int64(in.Hours.WorkedDays))).
		Div(decimal.NewFromInt(int64(in.WorkingDays))), nil
}

func overtimePay(in RuleInput) (decimal.Decimal, error) {
	if in.Hours.Overtime25Minutes == 0 && in.Hours.Overtime35Minutes == 0 && in.Hours.Overtime100Minutes == 0 {
		return decimal.Zero, nil
	}
	hourly, err := in.HourlyRate()
	if err != nil {
		return decimal.Zero, err
	}
	s := in.Settings
	weighted := minutesToHours(in.Hours.Overtime25Minutes).Mul(one.Add(s.OvertimeRate)).
		Add(minutesToHours(in.Hours.Overtime35Minutes).Mul(one.Add(s.OvertimeSecondRate))).
		Add(minutesToHours(in.Hours.Overtime100Minutes).Mul(one.Add(s.RestDayOvertimeRate)))
	return hourly.Mul(weighted), nil
}

func nightSurcharge(in RuleInput) (decimal.Decimal, error) {
	if in.Hours.NightMinutes == 0 {
		return decimal.Zero, nil
	}
	hourly, err := in.HourlyRate()
	if err != nil {
		return decimal.Zero, err
	}
	return hourly.Mul(minutesToHours(in.Hours.NightMinutes)).Mul(in.Item.Value), nil
}

func percentOfGross(in RuleInput) (decimal.Decimal, error) {
	return in.Income.Mul(in.Item.Value), nil
}

func percentOfInputs(in RuleInput) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, code := range in.Inputs {
		v, err := in.Value(code)
		if err != nil {
			return decimal.Zero, err
		}
		sum = sum.Add(v)
	}
	return sum.Mul(in.Item.Value), nil
}

func percentOfNet(in RuleInput) (decimal.Decimal, error) {
	net := in.Income.Sub(in.Deductions)
	if net.IsNegative() {
		return decimal.Zero, nil
	}
	return net.Mul(in.Item.Value), nil
}
