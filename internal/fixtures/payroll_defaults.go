package fixtures

import (
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/concept"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// ==========================================
// HELPER FUNCTIONS
// ==========================================

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func derived(rule concept.RuleCode, inputs ...string) concept.ValueSource {
	return concept.DerivedFromPriorTotals{Rule: rule, Inputs: inputs}
}

// ==========================================
// DEFAULT COMPANY SETTINGS
// ==========================================

// GetDefaultCompanySettings returns the settings of the agrarian regime:
// 8 hour days, 25% and 35% overtime bands and a 22:00 to 06:00 night window.
func GetDefaultCompanySettings() payroll.CompanySettings {
	return payroll.CompanySettings{
		OvertimeRate:           dec("0.25"),
		OvertimeSecondRate:     dec("0.35"),
		OvertimeFirstBandHours: dec("2"),
		RestDayOvertimeRate:    dec("1.00"),
		StandardDailyHours:     dec("8"),
		MonthCalculationDays:   30,
		NightShiftStart:        22 * time.Hour,
		NightShiftEnd:          6 * time.Hour,
	}
}

// ==========================================
// DEFAULT CONCEPTS
// ==========================================

// GetDefaultConcepts returns the starter concept catalog. Priorities leave
// gaps so companies can slot their own concepts in between.
func GetDefaultConcepts() []concept.Concept {
	return []concept.Concept{
		// Income
		{Code: "BASIC", Name: "Basic salary", Category: concept.CategoryIncome,
			CalculationPriority: 10, Source: derived(concept.RuleProratedSalary)},
		{Code: "FAMILY_ALLOWANCE", Name: "Family allowance", Category: concept.CategoryIncome,
			CalculationPriority: 20, DefaultValue: dec("102.50"), Source: concept.FixedAssignment{}},
		{Code: "OVERTIME", Name: "Overtime", Category: concept.CategoryIncome,
			CalculationPriority: 30, Source: derived(concept.RuleOvertime)},
		{Code: "NIGHT_SURCHARGE", Name: "Night work surcharge", Category: concept.CategoryIncome,
			CalculationPriority: 40, DefaultValue: dec("0.35"), Source: derived(concept.RuleNightSurcharge)},

		// Deductions
		{Code: "AFP", Name: "Pension fund contribution", Category: concept.CategoryDeduction,
			CalculationPriority: 100, DefaultValue: dec("0.10"), Source: derived(concept.RulePercentOfGross)},
		{Code: "AFP_INSURANCE", Name: "Pension fund insurance", Category: concept.CategoryDeduction,
			CalculationPriority: 110, DefaultValue: dec("0.0137"), Source: derived(concept.RulePercentOfGross)},

		// Employer contributions
		{Code: "ESSALUD", Name: "Health insurance (employer)", Category: concept.CategoryEmployerContribution,
			CalculationPriority: 200, DefaultValue: dec("0.06"), Source: derived(concept.RulePercentOfGross)},
	}
}

// GetDefaultAssignments pins every default concept to payrollID with its
// default value, as payroll configuration does.
func GetDefaultAssignments(payrollID string) []concept.Assignment {
	concepts := GetDefaultConcepts()
	assignments := make([]concept.Assignment, 0, len(concepts))
	for _, c := range concepts {
		assignments = append(assignments, concept.Assignment{
			PayrollID: payrollID,
			ConceptID: c.Code,
			Value:     c.DefaultValue,
			Concept:   c,
		})
	}
	return assignments
}
