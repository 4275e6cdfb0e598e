package payroll

import (
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type RunPayrollRequest struct {
	PayrollID string `json:"-"`
}

func (r *RunPayrollRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.RequireUUID("payroll_id", r.PayrollID)
	return errs.Err()
}

type TotalsResponse struct {
	EmployeeCount   int             `json:"employee_count"`
	TotalIncome     decimal.Decimal `json:"total_income"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
}

type RunPayrollResponse struct {
	ExecutionID string         `json:"execution_id"`
	PayrollID   string         `json:"payroll_id"`
	Status      string         `json:"status"`
	ReadCount   int            `json:"read_count"`
	WriteCount  int            `json:"write_count"`
	SkipCount   int            `json:"skip_count"`
	CommitCount int            `json:"commit_count"`
	Totals      TotalsResponse `json:"totals"`
}

type PayslipRunResponse struct {
	ExecutionID  string `json:"execution_id"`
	PayrollID    string `json:"payroll_id"`
	Status       string `json:"status"`
	Pending      int    `json:"pending"`
	Generated    int    `json:"generated"`
	FailureCount int    `json:"failure_count"`
}

type ItemFailureResponse struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
	At         string `json:"at"`
}

type ExecutionResponse struct {
	ID           string                `json:"id"`
	JobName      string                `json:"job_name"`
	Status       string                `json:"status"`
	ReadCount    int                   `json:"read_count"`
	WriteCount   int                   `json:"write_count"`
	SkipCount    int                   `json:"skip_count"`
	FailCount    int                   `json:"fail_count"`
	CommitCount  int                   `json:"commit_count"`
	Checkpoint   string                `json:"checkpoint"`
	RestartCount int                   `json:"restart_count"`
	ExitMessage  *string               `json:"exit_message"`
	Failures     []ItemFailureResponse `json:"failures"`
	StartedAt    string                `json:"started_at"`
	EndedAt      *string               `json:"ended_at"`
}
