package batch

import (
	"time"
)

type JobName string

const (
	JobPayrollCalculation JobName = "payroll_calculation"
	JobPayslipGeneration  JobName = "payslip_generation"
)

type JobStatus string

const (
	JobStatusStarted   JobStatus = "STARTED"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
	JobStatusStopped   JobStatus = "STOPPED"
)

// Restartable reports whether a new run should resume this execution.
func (s JobStatus) Restartable() bool {
	return s == JobStatusStarted || s == JobStatusFailed || s == JobStatusStopped
}

// JobExecution records one run of a batch job over a payroll: its counters,
// its terminal status and the checkpoint it can be resumed from.
type JobExecution struct {
	ID           string
	JobName      JobName
	PayrollID    string
	Status       JobStatus
	ReadCount    int
	WriteCount   int
	SkipCount    int
	FailCount    int
	CommitCount  int
	Checkpoint   string // last employee id of the last committed chunk
	RestartCount int
	ExitMessage  *string
	Failures     []ItemFailure
	StartedAt    time.Time
	EndedAt      *time.Time
	UpdatedAt    time.Time
}

// ItemFailure is one employee the job recorded and skipped.
type ItemFailure struct {
	EmployeeID string    `json:"employee_id"`
	Reason     string    `json:"reason"`
	At         time.Time `json:"at"`
}

// ChunkResult is what one committed chunk adds to the execution.
type ChunkResult struct {
	Read       int
	Written    int
	Skipped    int
	Checkpoint string
	Failures   []ItemFailure
}

// Apply folds a committed chunk into the execution counters.
func (e *JobExecution) Apply(r ChunkResult) {
	e.ReadCount += r.Read
	e.WriteCount += r.Written
	e.SkipCount += r.Skipped
	e.CommitCount++
	if r.Checkpoint != "" {
		e.Checkpoint = r.Checkpoint
	}
	e.Failures = append(e.Failures, r.Failures...)
}
