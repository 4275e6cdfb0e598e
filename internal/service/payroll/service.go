package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/batch"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
)

type PayrollServiceImpl struct {
	job      *CalculationJob
	execRepo batch.JobExecutionRepository
}

func NewPayrollService(job *CalculationJob, execRepo batch.JobExecutionRepository) payroll.PayrollService {
	return &PayrollServiceImpl{
		job:      job,
		execRepo: execRepo,
	}
}

func (s *PayrollServiceImpl) Calculate(ctx context.Context, req payroll.RunPayrollRequest) (payroll.RunPayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunPayrollResponse{}, err
	}

	exec, totals, err := s.job.Run(ctx, req.PayrollID)
	if err != nil {
		return payroll.RunPayrollResponse{}, err
	}

	return payroll.RunPayrollResponse{
		ExecutionID: exec.ID,
		PayrollID:   exec.PayrollID,
		Status:      string(exec.Status),
		ReadCount:   exec.ReadCount,
		WriteCount:  exec.WriteCount,
		SkipCount:   exec.SkipCount,
		CommitCount: exec.CommitCount,
		Totals: payroll.TotalsResponse{
			EmployeeCount:   totals.EmployeeCount,
			TotalIncome:     totals.TotalIncome,
			TotalDeductions: totals.TotalDeductions,
			TotalNet:        totals.TotalNet,
		},
	}, nil
}

func (s *PayrollServiceImpl) ListExecutions(ctx context.Context, payrollID string) ([]payroll.ExecutionResponse, error) {
	req := payroll.RunPayrollRequest{PayrollID: payrollID}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	execs, err := s.execRepo.ListByPayrollID(ctx, payrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list job executions: %w", err)
	}

	out := make([]payroll.ExecutionResponse, 0, len(execs))
	for _, e := range execs {
		out = append(out, ToExecutionResponse(e))
	}
	return out, nil
}

func ToExecutionResponse(e batch.JobExecution) payroll.ExecutionResponse {
	failures := make([]payroll.ItemFailureResponse, 0, len(e.Failures))
	for _, f := range e.Failures {
		failures = append(failures, payroll.ItemFailureResponse{
			EmployeeID: f.EmployeeID,
			Reason:     f.Reason,
			At:         f.At.Format(time.RFC3339),
		})
	}

	var ended *string
	if e.EndedAt != nil {
		s := e.EndedAt.Format(time.RFC3339)
		ended = &s
	}

	return payroll.ExecutionResponse{
		ID:           e.ID,
		JobName:      string(e.JobName),
		Status:       string(e.Status),
		ReadCount:    e.ReadCount,
		WriteCount:   e.WriteCount,
		SkipCount:    e.SkipCount,
		FailCount:    e.FailCount,
		CommitCount:  e.CommitCount,
		Checkpoint:   e.Checkpoint,
		RestartCount: e.RestartCount,
		ExitMessage:  e.ExitMessage,
		Failures:     failures,
		StartedAt:    e.StartedAt.Format(time.RFC3339),
		EndedAt:      ended,
	}
}
