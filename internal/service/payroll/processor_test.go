package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/concept"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/agro-payroll/internal/fixtures"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2), msgAndArgs...)
}

func resultByCode(t *testing.T, d payroll.PayrollDetail, code string) decimal.Decimal {
	t.Helper()
	for _, r := range d.ConceptResults {
		if r.Code == code {
			return r.Amount
		}
	}
	t.Fatalf("concept %s not in results", code)
	return decimal.Zero
}

func salaried(id string, salary string) employee.Employee {
	s := dec(salary)
	return employee.Employee{
		ID:               id,
		SubsidiaryID:     "sub-1",
		EmployeeCode:     "E-" + id,
		FullName:         "Employee " + id,
		HireDate:         date("2020-01-01"),
		EmploymentStatus: employee.EmploymentStatusActive,
		BaseSalary:       &s,
	}
}

func julyContext(plan []concept.PlanItem, workingDays []time.Time) payroll.RunContext {
	return payroll.NewRunContext(payroll.RunContextParams{
		PayrollID:    "payroll-1",
		SubsidiaryID: "sub-1",
		PeriodStart:  date("2024-07-01"),
		PeriodEnd:    date("2024-07-31"),
		WorkingDays:  workingDays,
		Settings:     defaultSettings(),
		Plan:         plan,
	})
}

func fixed(code string, category concept.Category, priority int, value string) concept.PlanItem {
	return concept.PlanItem{
		Code:     code,
		Name:     code,
		Value:    dec(value),
		Category: category,
		Priority: priority,
		Source:   concept.FixedAssignment{},
	}
}

func derived(code string, category concept.Category, priority int, value string, rule concept.RuleCode, inputs ...string) concept.PlanItem {
	return concept.PlanItem{
		Code:     code,
		Name:     code,
		Value:    dec(value),
		Category: category,
		Priority: priority,
		Source:   concept.DerivedFromPriorTotals{Rule: rule, Inputs: inputs},
	}
}

// ===== PROCESSOR TESTS =====

func TestProcessor_Process_TwentyDaysWithOvertime(t *testing.T) {
	// Arrange: 22 working days, 20 worked, one extra hour on five of them.
	days := julyWorkingDays()
	require.Len(t, days, 22)

	var entries []attendance.TimeEntry
	for i, d := range days[:20] {
		outH := 16
		if i < 5 {
			outH = 17
		}
		entries = append(entries, entry("t", "emp-1", d, 8, 0, outH, 0))
	}

	plan := []concept.PlanItem{
		fixed("BASE", concept.CategoryIncome, 10, "2200.00"),
		derived("OVERTIME", concept.CategoryIncome, 20, "0", concept.RuleOvertime),
		derived("HEALTH", concept.CategoryDeduction, 30, "0.09", concept.RulePercentOfGross),
	}
	rc := julyContext(plan, days)

	// Act
	detail, err := NewProcessor(DefaultRules()).Process(rc, salaried("emp-1", "2200.00"), entries)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 20, detail.Hours.WorkedDays)
	assert.Equal(t, 300, detail.Hours.Overtime25Minutes)
	assert.Zero(t, detail.Hours.Overtime35Minutes)
	assert.Zero(t, detail.Hours.NightMinutes)

	base := resultByCode(t, detail, "BASE")
	overtime := resultByCode(t, detail, "OVERTIME")
	health := resultByCode(t, detail, "HEALTH")

	assertAmount(t, "57.29", overtime)
	assertAmount(t, "2257.29", detail.TotalIncome)
	assert.True(t, detail.TotalIncome.Equal(base.Add(overtime)))
	assertAmount(t, "203.16", health)
	assert.True(t, detail.TotalDeductions.Equal(dec("0.09").Mul(base.Add(overtime)).Round(2)))
	assertAmount(t, "2054.13", detail.NetPay)
	assert.True(t, detail.NetPay.Equal(detail.TotalIncome.Sub(detail.TotalDeductions)))
}

func TestProcessor_Process_ZeroWorkingDays(t *testing.T) {
	plan := []concept.PlanItem{
		derived("BASIC", concept.CategoryIncome, 10, "0", concept.RuleProratedSalary),
		derived("OVERTIME", concept.CategoryIncome, 20, "0", concept.RuleOvertime),
		derived("HEALTH", concept.CategoryDeduction, 30, "0.09", concept.RulePercentOfGross),
	}
	rc := julyContext(plan, []time.Time{})

	detail, err := NewProcessor(nil).Process(rc, salaried("emp-1", "1500.00"), nil)

	require.NoError(t, err)
	assert.Zero(t, detail.Hours.WorkedDays)
	assert.True(t, detail.TotalIncome.IsZero())
	assert.True(t, detail.TotalDeductions.IsZero())
	assert.True(t, detail.NetPay.IsZero())
	assert.Len(t, detail.DayBreakdown, 31)
}

func TestProcessor_Process_ZeroWorkingDays_DefaultCatalog(t *testing.T) {
	// Arrange
	plan := BuildPlan(fixtures.GetDefaultAssignments("payroll-1"))
	require.NoError(t, ValidatePlan(plan, DefaultRules()))
	saturday := date("2024-07-06")
	// Rest day shift reaching into the night window.
	entries := []attendance.TimeEntry{entry("t1", "emp-1", saturday, 16, 0, 23, 0)}
	rc := julyContext(plan, []time.Time{})

	// Act
	detail, err := NewProcessor(nil).Process(rc, salaried("emp-1", "3000.00"), entries)

	// Assert
	require.NoError(t, err)
	assert.Zero(t, detail.Hours.WorkedDays)
	assert.Equal(t, 420, detail.Hours.Overtime100Minutes)
	assert.Equal(t, 60, detail.Hours.NightMinutes)
	for _, r := range detail.ConceptResults {
		assert.True(t, r.Amount.IsZero(), "concept %s", r.Code)
	}
	assertAmount(t, "0.00", detail.TotalIncome)
	assertAmount(t, "0.00", detail.TotalDeductions)
	assertAmount(t, "0.00", detail.TotalEmployerContributions)
	assertAmount(t, "0.00", detail.NetPay)
}

func TestProcessor_Process_DefaultCatalog(t *testing.T) {
	// Arrange
	plan := BuildPlan(fixtures.GetDefaultAssignments("payroll-1"))
	require.NoError(t, ValidatePlan(plan, DefaultRules()))
	days := julyWorkingDays()
	require.Len(t, days, 22)
	entries := []attendance.TimeEntry{entry("t0", "emp-1", days[0], 8, 0, 18, 0)}
	for _, d := range days[1:20] {
		entries = append(entries, entry("t", "emp-1", d, 8, 0, 16, 0))
	}
	rc := julyContext(plan, days)

	// Act
	detail, err := NewProcessor(nil).Process(rc, salaried("emp-1", "3000.00"), entries)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 20, detail.Hours.WorkedDays)
	assert.Equal(t, 120, detail.Hours.Overtime25Minutes)
	// 3000 x 20 / 22
	assertAmount(t, "2727.27", resultByCode(t, detail, "BASIC"))
	assertAmount(t, "102.50", resultByCode(t, detail, "FAMILY_ALLOWANCE"))
	// hourly 3000/30/8 = 12.50; 12.50 x 2h x 1.25
	assertAmount(t, "31.25", resultByCode(t, detail, "OVERTIME"))
	assertAmount(t, "0.00", resultByCode(t, detail, "NIGHT_SURCHARGE"))
	assertAmount(t, "2861.02", detail.TotalIncome)
	assertAmount(t, "286.10", resultByCode(t, detail, "AFP"))
	assertAmount(t, "39.20", resultByCode(t, detail, "AFP_INSURANCE"))
	assertAmount(t, "325.30", detail.TotalDeductions)
	assertAmount(t, "171.66", detail.TotalEmployerContributions)
	assertAmount(t, "2535.72", detail.NetPay)
}

func TestProcessor_Process_ProratesByWorkedDays(t *testing.T) {
	days := julyWorkingDays()
	var entries []attendance.TimeEntry
	for _, d := range days[:11] {
		entries = append(entries, entry("t", "emp-1", d, 8, 0, 16, 0))
	}
	rc := julyContext([]concept.PlanItem{
		derived("BASIC", concept.CategoryIncome, 10, "0", concept.RuleProratedSalary),
	}, days)

	detail, err := NewProcessor(nil).Process(rc, salaried("emp-1", "2200.00"), entries)

	require.NoError(t, err)
	assertAmount(t, "1100.00", resultByCode(t, detail, "BASIC"))
}

func TestProcessor_Process_RoundsHalfUpOncePerConcept(t *testing.T) {
	rc := julyContext([]concept.PlanItem{
		fixed("BASE", concept.CategoryIncome, 10, "100.00"),
		derived("BONUS", concept.CategoryIncome, 20, "0.33335", concept.RulePercentOfInputs, "BASE"),
		derived("BONUS_COPY", concept.CategoryEmployerContribution, 30, "1", concept.RulePercentOfInputs, "BONUS"),
	}, julyWorkingDays())

	detail, err := NewProcessor(nil).Process(rc, salaried("emp-1", "100.00"), nil)

	require.NoError(t, err)
	assertAmount(t, "33.34", resultByCode(t, detail, "BONUS"))
	assertAmount(t, "33.34", resultByCode(t, detail, "BONUS_COPY"))
	assertAmount(t, "133.34", detail.TotalIncome)
	assertAmount(t, "33.34", detail.TotalEmployerContributions)
}

func TestProcessor_Process_InputEvaluatedLaterIsFatal(t *testing.T) {
	// Plan order given as is: HEALTH at 50 lists BONUS which only comes at 60.
	rc := julyContext([]concept.PlanItem{
		derived("HEALTH", concept.CategoryDeduction, 50, "0.09", concept.RulePercentOfInputs, "BONUS"),
		fixed("BONUS", concept.CategoryIncome, 60, "100.00"),
	}, julyWorkingDays())

	_, err := NewProcessor(nil).Process(rc, salaried("emp-1", "1000.00"), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, concept.ErrUnresolvedConceptDependency)
	assert.False(t, isEmployeeError(err))
}

func TestProcessor_Process_PercentOfGrossOnlySeesEarlierIncome(t *testing.T) {
	rc := julyContext([]concept.PlanItem{
		fixed("BASE", concept.CategoryIncome, 10, "1000.00"),
		derived("HEALTH", concept.CategoryDeduction, 50, "0.10", concept.RulePercentOfGross),
		fixed("LATE_BONUS", concept.CategoryIncome, 60, "500.00"),
	}, julyWorkingDays())

	detail, err := NewProcessor(nil).Process(rc, salaried("emp-1", "1000.00"), nil)

	require.NoError(t, err)
	assertAmount(t, "100.00", resultByCode(t, detail, "HEALTH"))
	assertAmount(t, "1500.00", detail.TotalIncome)
}

func TestProcessor_Process_InvalidTimeFactsIsEmployeeError(t *testing.T) {
	day := date("2024-07-01")
	bad := entry("t1", "emp-1", day, 8, 0, 16, 0)
	bad.ClockOut = nil
	rc := julyContext([]concept.PlanItem{fixed("BASE", concept.CategoryIncome, 10, "100")}, julyWorkingDays())

	_, err := NewProcessor(nil).Process(rc, salaried("emp-1", "100.00"), []attendance.TimeEntry{bad})

	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrInvalidTimeFacts)
	assert.ErrorIs(t, err, attendance.ErrMissingClockOut)
	assert.True(t, isEmployeeError(err))
}

func TestProcessor_Process_MissingSalaryIsEmployeeError(t *testing.T) {
	emp := salaried("emp-1", "1.00")
	emp.BaseSalary = nil
	rc := julyContext([]concept.PlanItem{
		derived("BASIC", concept.CategoryIncome, 10, "0", concept.RuleProratedSalary),
	}, julyWorkingDays())

	_, err := NewProcessor(nil).Process(rc, emp, nil)

	assert.ErrorIs(t, err, payroll.ErrEmployeeHasNoBaseSalary)
	assert.True(t, isEmployeeError(err))
}

func TestProcessor_Process_NightSurchargeWithoutSalaryIsEmployeeError(t *testing.T) {
	// Arrange
	emp := salaried("emp-1", "1.00")
	emp.BaseSalary = nil
	entries := []attendance.TimeEntry{entry("t1", "emp-1", date("2024-07-01"), 20, 0, 4, 0)}
	rc := julyContext([]concept.PlanItem{
		fixed("BASE", concept.CategoryIncome, 10, "2400.00"),
		derived("NIGHT", concept.CategoryIncome, 20, "0.35", concept.RuleNightSurcharge),
	}, julyWorkingDays())

	// Act
	_, err := NewProcessor(nil).Process(rc, emp, entries)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrEmployeeHasNoBaseSalary)
	assert.True(t, isEmployeeError(err))
}

func TestProcessor_Process_ProratedSalaryFallsBackToPinnedValue(t *testing.T) {
	// Arrange
	emp := salaried("emp-1", "1.00")
	emp.BaseSalary = nil
	days := julyWorkingDays()
	var entries []attendance.TimeEntry
	for _, d := range days[:11] {
		entries = append(entries, entry("t", "emp-1", d, 8, 0, 16, 0))
	}
	rc := julyContext([]concept.PlanItem{
		derived("BASIC", concept.CategoryIncome, 10, "2200.00", concept.RuleProratedSalary),
	}, days)

	// Act
	detail, err := NewProcessor(nil).Process(rc, emp, entries)

	// Assert
	require.NoError(t, err)
	assertAmount(t, "1100.00", resultByCode(t, detail, "BASIC"))
}

func TestProcessor_Process_NightSurcharge(t *testing.T) {
	day := date("2024-07-01")
	// 20:00 to 04:00: eight hours worked, six of them at night.
	entries := []attendance.TimeEntry{entry("t1", "emp-1", day, 20, 0, 4, 0)}
	rc := julyContext([]concept.PlanItem{
		derived("NIGHT", concept.CategoryIncome, 20, "0.35", concept.RuleNightSurcharge),
	}, julyWorkingDays())

	detail, err := NewProcessor(nil).Process(rc, salaried("emp-1", "2400.00"), entries)

	require.NoError(t, err)
	assert.Equal(t, 360, detail.Hours.NightMinutes)
	// hourly 2400/30/8 = 10; 10 x 6h x 0.35
	assertAmount(t, "21.00", resultByCode(t, detail, "NIGHT"))
}

func TestProcessor_Process_CustomRule(t *testing.T) {
	rules := DefaultRules().With("FLAT_PER_DAY", RuleSpec{
		Fn: func(in RuleInput) (decimal.Decimal, error) {
			return in.Item.Value.Mul(decimal.NewFromInt(int64(in.Hours.WorkedDays))), nil
		},
	})
	days := julyWorkingDays()
	entries := []attendance.TimeEntry{
		entry("t1", "emp-1", days[0], 8, 0, 16, 0),
		entry("t2", "emp-1", days[1], 8, 0, 16, 0),
	}
	rc := julyContext([]concept.PlanItem{
		derived("MEAL", concept.CategoryIncome, 10, "12.50", "FLAT_PER_DAY"),
	}, days)

	detail, err := NewProcessor(rules).Process(rc, salaried("emp-1", "1000.00"), entries)

	require.NoError(t, err)
	assertAmount(t, "25.00", resultByCode(t, detail, "MEAL"))
	_, builtin := DefaultRules()["FLAT_PER_DAY"]
	assert.False(t, builtin)
}

func TestProcessor_Rules_ValidatesPlansWithCustomRules(t *testing.T) {
	// Arrange
	custom := DefaultRules().With("FLAT_PER_DAY", RuleSpec{
		Fn: func(in RuleInput) (decimal.Decimal, error) { return in.Item.Value, nil },
	})
	plan := []concept.PlanItem{
		derived("MEAL", concept.CategoryIncome, 10, "12.50", "FLAT_PER_DAY"),
	}

	// Act
	customErr := ValidatePlan(plan, NewProcessor(custom).Rules())
	defaultErr := ValidatePlan(plan, NewProcessor(nil).Rules())

	// Assert
	assert.NoError(t, customErr)
	assert.ErrorIs(t, defaultErr, concept.ErrUnknownRule)
	assert.Len(t, NewProcessor(nil).Rules(), len(DefaultRules()))
}
