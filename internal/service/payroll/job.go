package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/batch"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/metrics"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultChunkSize = 100
	defaultWorkers   = 4
)

type JobOptions struct {
	ChunkSize int
	Workers   int
}

// CalculationJob runs the employee-calculation stage of a payroll: read
// eligible employees in chunks, process them in parallel, commit each chunk
// with the execution checkpoint, then aggregate totals.
type CalculationJob struct {
	builder      *ContextBuilder
	processor    *Processor
	writer       *DetailWriter
	aggregator   *TotalsAggregator
	payrollRepo  payroll.PayrollRepository
	detailRepo   payroll.DetailRepository
	employeeRepo employee.EmployeeRepository
	timeRepo     attendance.TimeEntryRepository
	execRepo     batch.JobExecutionRepository
	tx           database.Transactor
	opts         JobOptions
	now          func() time.Time

	running sync.Map
}

func NewCalculationJob(
	builder *ContextBuilder,
	processor *Processor,
	payrollRepo payroll.PayrollRepository,
	detailRepo payroll.DetailRepository,
	employeeRepo employee.EmployeeRepository,
	timeRepo attendance.TimeEntryRepository,
	execRepo batch.JobExecutionRepository,
	tx database.Transactor,
	opts JobOptions,
) *CalculationJob {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	return &CalculationJob{
		builder:      builder,
		processor:    processor,
		writer:       NewDetailWriter(detailRepo),
		aggregator:   NewTotalsAggregator(payrollRepo, detailRepo, tx),
		payrollRepo:  payrollRepo,
		detailRepo:   detailRepo,
		employeeRepo: employeeRepo,
		timeRepo:     timeRepo,
		execRepo:     execRepo,
		tx:           tx,
		opts:         opts,
		now:          time.Now,
	}
}

// Run calculates the payroll. A cancelled ctx stops the job between chunks
// with payroll.ErrRunCancelled; the next Run resumes after the last
// committed chunk.
func (j *CalculationJob) Run(ctx context.Context, payrollID string) (batch.JobExecution, payroll.Totals, error) {
	if _, busy := j.running.LoadOrStore(payrollID, struct{}{}); busy {
		return batch.JobExecution{}, payroll.Totals{}, batch.ErrJobAlreadyRunning
	}
	defer j.running.Delete(payrollID)

	if err := j.checkCalculable(ctx, payrollID); err != nil {
		return batch.JobExecution{}, payroll.Totals{}, err
	}

	exec, err := j.startExecution(ctx, payrollID)
	if err != nil {
		return batch.JobExecution{}, payroll.Totals{}, err
	}
	log := slog.With("job", string(batch.JobPayrollCalculation), "payroll_id", payrollID, "execution_id", exec.ID)
	log.Info("Batch: Starting payroll calculation", "checkpoint", exec.Checkpoint, "restart_count", exec.RestartCount)

	rc, err := j.builder.Build(ctx, payrollID)
	if err != nil {
		return j.fail(ctx, exec, err)
	}

	reader := NewEmployeeReader(j.employeeRepo, rc, j.opts.ChunkSize, exec.Checkpoint)
	for {
		if ctx.Err() != nil {
			exec = j.finish(ctx, exec, batch.JobStatusStopped, fmt.Sprintf("stopped at checkpoint %q", exec.Checkpoint))
			log.Warn("Batch: Payroll calculation stopped", "checkpoint", exec.Checkpoint, "written", exec.WriteCount)
			return exec, payroll.Totals{}, fmt.Errorf("%w: %w", payroll.ErrRunCancelled, context.Cause(ctx))
		}

		// A started chunk always runs to its commit.
		chunkCtx := context.WithoutCancel(ctx)
		started := j.now()
		read, err := j.processChunk(chunkCtx, rc, reader, &exec)
		if err != nil {
			return j.fail(ctx, exec, err)
		}
		if read == 0 {
			break
		}
		metrics.ObserveChunk(string(batch.JobPayrollCalculation), j.now().Sub(started))
	}

	totals, err := j.aggregator.Aggregate(context.WithoutCancel(ctx), payrollID, exec.ID)
	if err != nil {
		return j.fail(ctx, exec, err)
	}

	msg := ""
	if exec.SkipCount > 0 {
		msg = fmt.Sprintf("completed with %d skipped employees", exec.SkipCount)
		log.Warn("Batch: Payroll calculated with skipped employees", "skip_count", exec.SkipCount)
	}
	exec = j.finish(ctx, exec, batch.JobStatusCompleted, msg)
	log.Info("Batch: Payroll calculation completed",
		"read", exec.ReadCount,
		"written", exec.WriteCount,
		"skipped", exec.SkipCount,
		"commits", exec.CommitCount,
		"total_net", totals.TotalNet.String())

	return exec, totals, nil
}

func (j *CalculationJob) checkCalculable(ctx context.Context, payrollID string) error {
	p, err := j.payrollRepo.GetByID(ctx, payrollID)
	if err != nil {
		return err
	}
	if !p.Status.Calculable() {
		return fmt.Errorf("%w: status %s", payroll.ErrPayrollNotCalculable, p.Status)
	}
	n, err := j.detailRepo.CountWithPayslip(ctx, payrollID)
	if err != nil {
		return fmt.Errorf("failed to count generated payslips: %w", err)
	}
	if n > 0 {
		return payroll.ErrPayslipsAlreadyGenerated
	}
	return nil
}

// startExecution resumes the latest unfinished execution or opens a new one.
func (j *CalculationJob) startExecution(ctx context.Context, payrollID string) (batch.JobExecution, error) {
	latest, err := j.execRepo.GetLatest(ctx, batch.JobPayrollCalculation, payrollID)
	switch {
	case err == nil && latest.Status.Restartable():
		latest.Status = batch.JobStatusStarted
		latest.RestartCount++
		latest.EndedAt = nil
		latest.ExitMessage = nil
		if err := j.execRepo.Update(ctx, latest); err != nil {
			return batch.JobExecution{}, fmt.Errorf("failed to resume job execution: %w", err)
		}
		return latest, nil
	case err != nil && !errors.Is(err, batch.ErrJobExecutionNotFound):
		return batch.JobExecution{}, fmt.Errorf("failed to load job execution: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return batch.JobExecution{}, fmt.Errorf("failed to generate execution id: %w", err)
	}
	exec, err := j.execRepo.Create(ctx, batch.JobExecution{
		ID:        id.String(),
		JobName:   batch.JobPayrollCalculation,
		PayrollID: payrollID,
		Status:    batch.JobStatusStarted,
		StartedAt: j.now(),
	})
	if err != nil {
		return batch.JobExecution{}, fmt.Errorf("failed to create job execution: %w", err)
	}
	return exec, nil
}

// processChunk reads, processes and commits one chunk. It returns the number
// of employees read; zero means the reader is exhausted.
func (j *CalculationJob) processChunk(ctx context.Context, rc payroll.RunContext, reader *EmployeeReader, exec *batch.JobExecution) (int, error) {
	employees, err := reader.Read(ctx)
	if err != nil {
		return 0, err
	}
	if len(employees) == 0 {
		return 0, nil
	}

	ids := make([]string, len(employees))
	for i, e := range employees {
		ids[i] = e.ID
	}
	entries, err := j.timeRepo.GetByEmployeesInRange(ctx, ids, rc.PeriodStart(), rc.PeriodEnd())
	if err != nil {
		return 0, fmt.Errorf("failed to load time entries: %w", err)
	}

	details := make([]*payroll.PayrollDetail, len(employees))
	skipped := make([]error, len(employees))

	g := new(errgroup.Group)
	g.SetLimit(j.opts.Workers)
	for i, emp := range employees {
		g.Go(func() error {
			detail, err := j.processor.Process(rc, emp, entries[emp.ID])
			if err != nil {
				if isEmployeeError(err) {
					skipped[i] = err
					return nil
				}
				return err
			}
			details[i] = &detail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	result := batch.ChunkResult{Read: len(employees), Checkpoint: reader.Position()}
	toWrite := make([]payroll.PayrollDetail, 0, len(employees))
	var skippedIDs []string
	for i, emp := range employees {
		if skipped[i] != nil {
			slog.Warn("Batch: Skipping employee",
				"payroll_id", rc.PayrollID(),
				"employee_id", emp.ID,
				"employee_code", emp.EmployeeCode,
				"error", skipped[i])
			result.Skipped++
			result.Failures = append(result.Failures, batch.ItemFailure{
				EmployeeID: emp.ID,
				Reason:     skipped[i].Error(),
				At:         j.now(),
			})
			skippedIDs = append(skippedIDs, emp.ID)
			continue
		}
		details[i].ExecutionID = exec.ID
		toWrite = append(toWrite, *details[i])
	}

	next := *exec
	err = j.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// A skipped employee must not keep the detail of an earlier run.
		if _, err := j.detailRepo.DeleteForEmployees(ctx, rc.PayrollID(), skippedIDs); err != nil {
			return err
		}
		written, err := j.writer.Write(ctx, toWrite)
		if err != nil {
			return err
		}
		result.Written = written
		next.Apply(result)
		if err := j.execRepo.Update(ctx, next); err != nil {
			return fmt.Errorf("failed to update job execution: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	*exec = next

	job := string(batch.JobPayrollCalculation)
	metrics.AddItems(job, metrics.OutcomeWritten, result.Written)
	metrics.AddItems(job, metrics.OutcomeSkipped, result.Skipped)
	return len(employees), nil
}

func (j *CalculationJob) fail(ctx context.Context, exec batch.JobExecution, cause error) (batch.JobExecution, payroll.Totals, error) {
	slog.Error("Batch: Payroll calculation failed",
		"payroll_id", exec.PayrollID,
		"execution_id", exec.ID,
		"checkpoint", exec.Checkpoint,
		"error", cause)
	exec.FailCount++
	exec = j.finish(ctx, exec, batch.JobStatusFailed, cause.Error())
	return exec, payroll.Totals{}, cause
}

// finish records the terminal status even when ctx is already cancelled.
func (j *CalculationJob) finish(ctx context.Context, exec batch.JobExecution, status batch.JobStatus, msg string) batch.JobExecution {
	ended := j.now()
	exec.Status = status
	exec.EndedAt = &ended
	exec.ExitMessage = nil
	if msg != "" {
		exec.ExitMessage = &msg
	}
	if err := j.execRepo.Update(context.WithoutCancel(ctx), exec); err != nil {
		slog.Error("Batch: Failed to record job execution status",
			"execution_id", exec.ID,
			"status", string(status),
			"error", err)
	}
	metrics.RecordRun(string(exec.JobName), string(status))
	return exec
}
