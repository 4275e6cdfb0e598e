package payroll

import "errors"

var (
	ErrPayrollNotFound          = errors.New("payroll not found")
	ErrCompanySettingsNotFound  = errors.New("company payroll settings not found")
	ErrPayrollNotCalculable     = errors.New("payroll status does not allow calculation")
	ErrPayrollNotCalculated     = errors.New("payroll has not been calculated")
	ErrPayslipsAlreadyGenerated = errors.New("payroll already has generated payslips, cannot recalculate")
	ErrPayrollDetailNotFound    = errors.New("payroll detail not found")
	ErrInvalidPeriod            = errors.New("invalid payroll period")
	ErrInvalidTimeFacts         = errors.New("invalid employee time facts")
	ErrRunCancelled             = errors.New("payroll run cancelled")
	ErrPayslipAlreadyStored     = errors.New("payslip already stored for payroll detail")
	ErrEmployeeHasNoBaseSalary  = errors.New("employee has no base salary")
	ErrInvalidCompanySettings   = errors.New("invalid company payroll settings")
)
