package batch

import "errors"

var (
	ErrJobExecutionNotFound = errors.New("job execution not found")
	ErrJobAlreadyRunning    = errors.New("job execution already running for payroll")
)
