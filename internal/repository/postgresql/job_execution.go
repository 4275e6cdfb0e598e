package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/batch"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type jobExecutionRepository struct {
	db *database.DB
}

func NewJobExecutionRepository(db *database.DB) batch.JobExecutionRepository {
	return &jobExecutionRepository{db: db}
}

const jobExecutionColumns = `
	id, job_name, payroll_id, status, read_count, write_count, skip_count, fail_count,
	commit_count, checkpoint, restart_count, exit_message, failures, started_at, ended_at, updated_at
`

func scanJobExecution(row pgx.Row) (batch.JobExecution, error) {
	var exec batch.JobExecution
	var failures []byte
	err := row.Scan(
		&exec.ID, &exec.JobName, &exec.PayrollID, &exec.Status,
		&exec.ReadCount, &exec.WriteCount, &exec.SkipCount, &exec.FailCount,
		&exec.CommitCount, &exec.Checkpoint, &exec.RestartCount, &exec.ExitMessage,
		&failures, &exec.StartedAt, &exec.EndedAt, &exec.UpdatedAt,
	)
	if err != nil {
		return batch.JobExecution{}, err
	}
	if len(failures) > 0 {
		if err := json.Unmarshal(failures, &exec.Failures); err != nil {
			return batch.JobExecution{}, fmt.Errorf("failed to decode failures of execution %s: %w", exec.ID, err)
		}
	}
	return exec, nil
}

func (r *jobExecutionRepository) Create(ctx context.Context, exec batch.JobExecution) (batch.JobExecution, error) {
	q := GetQuerier(ctx, r.db)

	failures, err := encodeFailures(exec.Failures)
	if err != nil {
		return batch.JobExecution{}, err
	}

	query := `
		INSERT INTO job_executions (
			id, job_name, payroll_id, status, read_count, write_count, skip_count, fail_count,
			commit_count, checkpoint, restart_count, exit_message, failures, started_at, ended_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + jobExecutionColumns

	created, err := scanJobExecution(q.QueryRow(ctx, query,
		exec.ID, exec.JobName, exec.PayrollID, exec.Status,
		exec.ReadCount, exec.WriteCount, exec.SkipCount, exec.FailCount,
		exec.CommitCount, exec.Checkpoint, exec.RestartCount, exec.ExitMessage,
		failures, exec.StartedAt, exec.EndedAt,
	))
	if err != nil {
		return batch.JobExecution{}, fmt.Errorf("failed to create job execution: %w", err)
	}

	return created, nil
}

func (r *jobExecutionRepository) GetLatest(ctx context.Context, job batch.JobName, payrollID string) (batch.JobExecution, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + jobExecutionColumns + `
		FROM job_executions
		WHERE job_name = $1 AND payroll_id = $2
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`

	exec, err := scanJobExecution(q.QueryRow(ctx, query, job, payrollID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return batch.JobExecution{}, batch.ErrJobExecutionNotFound
		}
		return batch.JobExecution{}, fmt.Errorf("failed to get latest job execution: %w", err)
	}

	return exec, nil
}

func (r *jobExecutionRepository) ListByPayrollID(ctx context.Context, payrollID string) ([]batch.JobExecution, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + jobExecutionColumns + `
		FROM job_executions
		WHERE payroll_id = $1
		ORDER BY started_at DESC, id DESC
	`

	rows, err := q.Query(ctx, query, payrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list job executions: %w", err)
	}
	defer rows.Close()

	var execs []batch.JobExecution
	for rows.Next() {
		exec, err := scanJobExecution(rows)
		if err != nil {
			return nil, err
		}
		execs = append(execs, exec)
	}

	return execs, rows.Err()
}

func (r *jobExecutionRepository) Update(ctx context.Context, exec batch.JobExecution) error {
	q := GetQuerier(ctx, r.db)

	failures, err := encodeFailures(exec.Failures)
	if err != nil {
		return err
	}

	query := `
		UPDATE job_executions
		SET status = $2,
			read_count = $3,
			write_count = $4,
			skip_count = $5,
			fail_count = $6,
			commit_count = $7,
			checkpoint = $8,
			restart_count = $9,
			exit_message = $10,
			failures = $11,
			ended_at = $12,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		exec.ID, exec.Status,
		exec.ReadCount, exec.WriteCount, exec.SkipCount, exec.FailCount,
		exec.CommitCount, exec.Checkpoint, exec.RestartCount, exec.ExitMessage,
		failures, exec.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update job execution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return batch.ErrJobExecutionNotFound
	}

	return nil
}

func encodeFailures(failures []batch.ItemFailure) ([]byte, error) {
	if failures == nil {
		failures = []batch.ItemFailure{}
	}
	b, err := json.Marshal(failures)
	if err != nil {
		return nil, fmt.Errorf("failed to encode item failures: %w", err)
	}
	return b, nil
}
