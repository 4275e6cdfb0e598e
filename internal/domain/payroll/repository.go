package payroll

import "context"

// PayrollRepository defines data access methods for payroll headers.
type PayrollRepository interface {
	GetByID(ctx context.Context, id string) (Payroll, error)
	GetCompanySettings(ctx context.Context) (CompanySettings, error)
	// AggregateDetails computes totals from the persisted detail rows.
	AggregateDetails(ctx context.Context, payrollID string) (Totals, error)
	// MarkCalculated stores totals and moves a DRAFT or CALCULATED payroll to CALCULATED.
	MarkCalculated(ctx context.Context, payrollID string, totals Totals) error
	// ListPendingPayslips returns calculated payrolls with details lacking a payslip.
	ListPendingPayslips(ctx context.Context) ([]string, error)
}

// DetailRepository defines data access methods for payroll detail rows.
type DetailRepository interface {
	// UpsertBatch inserts details, replacing the existing row of the same
	// (payroll, employee) unless a payslip was already generated for it.
	UpsertBatch(ctx context.Context, details []PayrollDetail) (int, error)
	CountWithPayslip(ctx context.Context, payrollID string) (int, error)
	ListWithoutPayslip(ctx context.Context, payrollID string) ([]PayrollDetail, error)
	SetPayslipURL(ctx context.Context, detailID string, url string) error
	// DeleteForEmployees removes the payroll's rows of the given employees
	// that have no payslip yet.
	DeleteForEmployees(ctx context.Context, payrollID string, employeeIDs []string) (int, error)
	// DeleteStale removes the payroll's rows without a payslip that were not
	// written by executionID.
	DeleteStale(ctx context.Context, payrollID string, executionID string) (int, error)
}
