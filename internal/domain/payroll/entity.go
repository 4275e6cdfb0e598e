package payroll

import (
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/concept"
	"github.com/shopspring/decimal"
)

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusDraft      PayrollStatus = "DRAFT"
	PayrollStatusCalculated PayrollStatus = "CALCULATED"
	PayrollStatusApproved   PayrollStatus = "APPROVED"
	PayrollStatusPaid       PayrollStatus = "PAID"
	PayrollStatusCancelled  PayrollStatus = "CANCELLED"
)

// Calculable reports whether the employee-calculation stage may run.
func (s PayrollStatus) Calculable() bool {
	return s == PayrollStatusDraft || s == PayrollStatusCalculated
}

// Calculated reports whether the payroll has passed the calculation commit point.
func (s PayrollStatus) Calculated() bool {
	switch s {
	case PayrollStatusCalculated, PayrollStatusApproved, PayrollStatusPaid:
		return true
	}
	return false
}

// Payroll - one calculation run for a subsidiary and period
type Payroll struct {
	ID                 string
	Code               string
	SubsidiaryID       string
	PeriodStart        time.Time
	PeriodEnd          time.Time
	Status             PayrollStatus
	Totals             Totals
	BasePayrollID      *string
	CorrectedPayrollID *string
	CalculatedAt       *time.Time
	ApprovedBy         *string
	ApprovedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Totals cache the aggregation of a payroll's detail rows.
type Totals struct {
	EmployeeCount   int
	TotalIncome     decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
}

// CompanySettings - singleton numeric configuration used by every run
type CompanySettings struct {
	ID                     string
	OvertimeRate           decimal.Decimal // premium of the first overtime band, 0.25 = 25%
	OvertimeSecondRate     decimal.Decimal
	OvertimeFirstBandHours decimal.Decimal
	RestDayOvertimeRate    decimal.Decimal
	StandardDailyHours     decimal.Decimal
	MonthCalculationDays   int
	NightShiftStart        time.Duration // offset from midnight
	NightShiftEnd          time.Duration
	UpdatedAt              time.Time
}

// ConceptResult is the rounded amount one concept produced for one employee.
type ConceptResult struct {
	Code     string           `json:"code"`
	Name     string           `json:"name"`
	Category concept.Category `json:"category"`
	Amount   decimal.Decimal  `json:"amount"`
}

// DayBreakdown is the reconstructed time of one calendar date.
type DayBreakdown struct {
	Date               time.Time `json:"date"`
	WorkingDay         bool      `json:"working_day"`
	Worked             bool      `json:"worked"`
	NormalMinutes      int       `json:"normal_minutes"`
	Overtime25Minutes  int       `json:"overtime_25_minutes"`
	Overtime35Minutes  int       `json:"overtime_35_minutes"`
	Overtime100Minutes int       `json:"overtime_100_minutes"`
	NightMinutes       int       `json:"night_minutes"`
}

// HourSummary aggregates the day breakdown of one employee.
type HourSummary struct {
	WorkedDays         int
	NormalMinutes      int
	Overtime25Minutes  int
	Overtime35Minutes  int
	Overtime100Minutes int
	NightMinutes       int
}

// PayrollDetail - one employee's calculated result within a payroll
type PayrollDetail struct {
	ID                         string
	PayrollID                  string
	EmployeeID                 string
	ExecutionID                string // calculation execution that last wrote the row
	ConceptResults             []ConceptResult
	DayBreakdown               []DayBreakdown
	Hours                      HourSummary
	TotalIncome                decimal.Decimal
	TotalDeductions            decimal.Decimal
	TotalEmployerContributions decimal.Decimal
	NetPay                     decimal.Decimal
	PayslipURL                 *string
	PayslipGeneratedAt         *time.Time
	CreatedAt                  time.Time
	UpdatedAt                  time.Time

	// Joined fields
	EmployeeCode *string
	EmployeeName *string
}
