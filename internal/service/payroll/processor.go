package payroll

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/concept"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// Processor turns one employee's time facts into a PayrollDetail. It holds
// no state between calls and is safe for concurrent use.
type Processor struct {
	rules RuleSet
}

func NewProcessor(rules RuleSet) *Processor {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Processor{rules: rules}
}

// Rules is the set the processor evaluates with. Plans must be validated
// against the same set.
func (p *Processor) Rules() RuleSet {
	return p.rules
}

// Process evaluates the run's plan for emp. Errors wrapping
// payroll.ErrInvalidTimeFacts or payroll.ErrEmployeeHasNoBaseSalary concern
// this employee only; any other error invalidates the whole run.
func (p *Processor) Process(rc payroll.RunContext, emp employee.Employee, entries []attendance.TimeEntry) (payroll.PayrollDetail, error) {
	days, hours, err := reconstructTime(rc, entries)
	if err != nil {
		return payroll.PayrollDetail{}, fmt.Errorf("employee %s: %w", emp.ID, err)
	}

	plan := rc.Plan()
	values := make(map[string]decimal.Decimal, len(plan))
	results := make([]payroll.ConceptResult, 0, len(plan))
	income, deductions, employer := decimal.Zero, decimal.Zero, decimal.Zero
	noWorkingDays := rc.WorkingDayCount() == 0

	for _, item := range plan {
		var amount decimal.Decimal
		// A period without working days earns nothing.
		idle := noWorkingDays && item.Category == concept.CategoryIncome

		switch src := item.Source.(type) {
		case concept.FixedAssignment:
			if !idle {
				amount = item.Value
			}
		case concept.DerivedFromPriorTotals:
			spec, ok := p.rules[src.Rule]
			if !ok {
				return payroll.PayrollDetail{}, fmt.Errorf("%w: %s uses %q", concept.ErrUnknownRule, item.Code, src.Rule)
			}
			for _, code := range src.Inputs {
				if _, ok := values[code]; !ok {
					return payroll.PayrollDetail{}, fmt.Errorf("%w: %s reads %s", concept.ErrUnresolvedConceptDependency, item.Code, code)
				}
			}
			if idle {
				break
			}
			amount, err = spec.Fn(RuleInput{
				Item:        item,
				Inputs:      src.Inputs,
				Employee:    emp,
				Hours:       hours,
				Settings:    rc.Settings(),
				WorkingDays: rc.WorkingDayCount(),
				Income:      income,
				Deductions:  deductions,
				values:      values,
			})
			if err != nil {
				return payroll.PayrollDetail{}, fmt.Errorf("concept %s for employee %s: %w", item.Code, emp.ID, err)
			}
		default:
			return payroll.PayrollDetail{}, fmt.Errorf("%w: %s has no value source", concept.ErrUnknownRule, item.Code)
		}

		amount = amount.Round(2)
		values[item.Code] = amount
		results = append(results, payroll.ConceptResult{
			Code:     item.Code,
			Name:     item.Name,
			Category: item.Category,
			Amount:   amount,
		})

		switch item.Category {
		case concept.CategoryIncome:
			income = income.Add(amount)
		case concept.CategoryDeduction:
			deductions = deductions.Add(amount)
		case concept.CategoryEmployerContribution:
			employer = employer.Add(amount)
		default:
			return payroll.PayrollDetail{}, fmt.Errorf("%w: %s", concept.ErrUnknownCategory, item.Code)
		}
	}

	return payroll.PayrollDetail{
		PayrollID:                  rc.PayrollID(),
		EmployeeID:                 emp.ID,
		ConceptResults:             results,
		DayBreakdown:               days,
		Hours:                      hours,
		TotalIncome:                income,
		TotalDeductions:            deductions,
		TotalEmployerContributions: employer,
		NetPay:                     income.Sub(deductions),
		EmployeeCode:               &emp.EmployeeCode,
		EmployeeName:               &emp.FullName,
	}, nil
}

// isEmployeeError reports whether err only disqualifies the employee being
// processed.
func isEmployeeError(err error) bool {
	return errors.Is(err, payroll.ErrInvalidTimeFacts) || errors.Is(err, payroll.ErrEmployeeHasNoBaseSalary)
}
