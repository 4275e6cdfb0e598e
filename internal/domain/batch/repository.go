package batch

import "context"

type JobExecutionRepository interface {
	Create(ctx context.Context, exec JobExecution) (JobExecution, error)
	// GetLatest returns the most recent execution of job for the payroll.
	GetLatest(ctx context.Context, job JobName, payrollID string) (JobExecution, error)
	ListByPayrollID(ctx context.Context, payrollID string) ([]JobExecution, error)
	// Update persists counters, checkpoint, status and failures.
	Update(ctx context.Context, exec JobExecution) error
}
