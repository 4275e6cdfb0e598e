package payroll

import "context"

type PayrollService interface {
	// Calculate runs or resumes the employee-calculation stage.
	Calculate(ctx context.Context, req RunPayrollRequest) (RunPayrollResponse, error)
	ListExecutions(ctx context.Context, payrollID string) ([]ExecutionResponse, error)
}

type PayslipService interface {
	// Generate renders and stores a payslip for every detail lacking one.
	Generate(ctx context.Context, req RunPayrollRequest) (PayslipRunResponse, error)
	// GeneratePending retries every calculated payroll with missing payslips.
	GeneratePending(ctx context.Context) error
}
