package payslip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/batch"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/calendar"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/document"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/metrics"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

type PayslipServiceImpl struct {
	payrollRepo  payroll.PayrollRepository
	detailRepo   payroll.DetailRepository
	employeeRepo employee.EmployeeRepository
	execRepo     batch.JobExecutionRepository
	calendarSvc  calendar.CalendarService
	renderer     *document.PayslipRenderer
	storage      storage.FileStorage
	workers      int

	running sync.Map
}

func NewPayslipService(
	payrollRepo payroll.PayrollRepository,
	detailRepo payroll.DetailRepository,
	employeeRepo employee.EmployeeRepository,
	execRepo batch.JobExecutionRepository,
	calendarSvc calendar.CalendarService,
	renderer *document.PayslipRenderer,
	storage storage.FileStorage,
	workers int,
) payroll.PayslipService {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &PayslipServiceImpl{
		payrollRepo:  payrollRepo,
		detailRepo:   detailRepo,
		employeeRepo: employeeRepo,
		execRepo:     execRepo,
		calendarSvc:  calendarSvc,
		renderer:     renderer,
		storage:      storage,
		workers:      workers,
	}
}

// Generate renders a payslip for every detail of a calculated payroll that
// has none yet. Failures are per employee; those rows stay pending and are
// picked up by the next call.
func (s *PayslipServiceImpl) Generate(ctx context.Context, req payroll.RunPayrollRequest) (payroll.PayslipRunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayslipRunResponse{}, err
	}
	if _, busy := s.running.LoadOrStore(req.PayrollID, struct{}{}); busy {
		return payroll.PayslipRunResponse{}, batch.ErrJobAlreadyRunning
	}
	defer s.running.Delete(req.PayrollID)

	p, err := s.payrollRepo.GetByID(ctx, req.PayrollID)
	if err != nil {
		return payroll.PayslipRunResponse{}, err
	}
	if !p.Status.Calculated() {
		return payroll.PayslipRunResponse{}, fmt.Errorf("%w: status %s", payroll.ErrPayrollNotCalculated, p.Status)
	}

	pending, err := s.detailRepo.ListWithoutPayslip(ctx, p.ID)
	if err != nil {
		return payroll.PayslipRunResponse{}, fmt.Errorf("failed to list pending payslips: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.PayslipRunResponse{}, fmt.Errorf("failed to generate execution id: %w", err)
	}
	exec, err := s.execRepo.Create(ctx, batch.JobExecution{
		ID:        id.String(),
		JobName:   batch.JobPayslipGeneration,
		PayrollID: p.ID,
		Status:    batch.JobStatusStarted,
		StartedAt: time.Now(),
	})
	if err != nil {
		return payroll.PayslipRunResponse{}, fmt.Errorf("failed to create job execution: %w", err)
	}

	result, err := s.generateAll(ctx, p, pending)
	if err != nil {
		exec.FailCount++
		s.finish(ctx, &exec, batch.JobStatusFailed, err.Error())
		return s.response(exec, len(pending)), err
	}

	exec.Apply(batch.ChunkResult{Read: result.Read, Written: result.Written, Failures: result.Failures})
	exec.FailCount += len(result.Failures)

	switch {
	case ctx.Err() != nil:
		s.finish(ctx, &exec, batch.JobStatusStopped, "stopped before every payslip was generated")
	case len(result.Failures) > 0:
		s.finish(ctx, &exec, batch.JobStatusCompleted, fmt.Sprintf("%d payslips failed and remain pending", len(result.Failures)))
	default:
		s.finish(ctx, &exec, batch.JobStatusCompleted, "")
	}

	slog.Info("Batch: Payslip generation finished",
		"payroll_id", p.ID,
		"execution_id", exec.ID,
		"pending", len(pending),
		"generated", result.Written,
		"failed", len(result.Failures))

	return s.response(exec, len(pending)), nil
}

// generateAll loads what the payslips share and renders them in parallel.
func (s *PayslipServiceImpl) generateAll(ctx context.Context, p payroll.Payroll, pending []payroll.PayrollDetail) (batch.ChunkResult, error) {
	var result batch.ChunkResult
	if len(pending) == 0 {
		return result, nil
	}

	days, err := s.calendarSvc.Range(ctx, p.PeriodStart, p.PeriodEnd)
	if err != nil {
		return result, fmt.Errorf("failed to load calendar for payslips: %w", err)
	}

	ids := make([]string, len(pending))
	for i, d := range pending {
		ids[i] = d.EmployeeID
	}
	employees, err := s.employeeRepo.GetByIDs(ctx, ids)
	if err != nil {
		return result, fmt.Errorf("failed to load employees for payslips: %w", err)
	}
	byID := make(map[string]employee.Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for _, detail := range pending {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			err := s.generateOne(ctx, p, byID, detail, days)

			mu.Lock()
			defer mu.Unlock()
			result.Read++
			if err != nil {
				slog.Warn("Batch: Payslip generation failed",
					"payroll_id", p.ID,
					"employee_id", detail.EmployeeID,
					"error", err)
				result.Failures = append(result.Failures, batch.ItemFailure{
					EmployeeID: detail.EmployeeID,
					Reason:     err.Error(),
					At:         time.Now(),
				})
				return nil
			}
			result.Written++
			return nil
		})
	}
	_ = g.Wait()

	job := string(batch.JobPayslipGeneration)
	metrics.AddItems(job, metrics.OutcomeWritten, result.Written)
	metrics.AddItems(job, metrics.OutcomeFailed, len(result.Failures))
	return result, nil
}

func (s *PayslipServiceImpl) generateOne(ctx context.Context, p payroll.Payroll, employees map[string]employee.Employee, detail payroll.PayrollDetail, days []calendar.Day) error {
	emp, ok := employees[detail.EmployeeID]
	if !ok {
		return employee.ErrEmployeeNotFound
	}

	buf, err := s.renderer.Render(document.PayslipData{
		Payroll:  p,
		Employee: emp,
		Detail:   detail,
		Calendar: days,
	})
	if err != nil {
		return err
	}

	key := fmt.Sprintf("payslips/%s/%s%s", p.ID, emp.ID, s.renderer.Extension())
	orphan, err := s.storage.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check payslip: %w", err)
	}
	if orphan {
		slog.Info("Batch: Replacing unrecorded payslip", "payroll_id", p.ID, "employee_id", emp.ID, "key", key)
	}
	if err := s.storage.Put(ctx, key, buf, s.renderer.ContentType()); err != nil {
		return fmt.Errorf("failed to store payslip: %w", err)
	}

	err = s.detailRepo.SetPayslipURL(ctx, detail.ID, s.storage.URL(key))
	if errors.Is(err, payroll.ErrPayslipAlreadyStored) {
		return nil
	}
	if err != nil {
		// The document is not referenced by any detail.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			slog.Warn("Batch: Failed to remove unrecorded payslip", "key", key, "error", delErr)
		}
		return fmt.Errorf("failed to record payslip: %w", err)
	}
	return nil
}

// GeneratePending retries payslip generation for every calculated payroll
// that still has details without a document.
func (s *PayslipServiceImpl) GeneratePending(ctx context.Context) error {
	ids, err := s.payrollRepo.ListPendingPayslips(ctx)
	if err != nil {
		return fmt.Errorf("failed to list payrolls with pending payslips: %w", err)
	}
	if len(ids) == 0 {
		slog.Debug("Cron: No pending payslips found")
		return nil
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		resp, err := s.Generate(ctx, payroll.RunPayrollRequest{PayrollID: id})
		if err != nil {
			slog.Error("Cron: Failed to generate pending payslips", "payroll_id", id, "error", err)
			continue
		}
		slog.Info("Cron: Generated pending payslips",
			"payroll_id", id,
			"generated", resp.Generated,
			"failed", resp.FailureCount)
	}
	return nil
}

func (s *PayslipServiceImpl) finish(ctx context.Context, exec *batch.JobExecution, status batch.JobStatus, msg string) {
	ended := time.Now()
	exec.Status = status
	exec.EndedAt = &ended
	if msg != "" {
		exec.ExitMessage = &msg
	}
	if err := s.execRepo.Update(context.WithoutCancel(ctx), *exec); err != nil {
		slog.Error("Batch: Failed to record job execution status", "execution_id", exec.ID, "error", err)
	}
	metrics.RecordRun(string(batch.JobPayslipGeneration), string(status))
}

func (s *PayslipServiceImpl) response(exec batch.JobExecution, pending int) payroll.PayslipRunResponse {
	return payroll.PayslipRunResponse{
		ExecutionID:  exec.ID,
		PayrollID:    exec.PayrollID,
		Status:       string(exec.Status),
		Pending:      pending,
		Generated:    exec.WriteCount,
		FailureCount: len(exec.Failures),
	}
}
