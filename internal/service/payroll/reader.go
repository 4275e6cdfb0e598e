package payroll

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
)

// EmployeeReader pages through the employees eligible for a run, ordered by
// id. The position only moves forward.
type EmployeeReader struct {
	repo   employee.EmployeeRepository
	filter employee.EligibilityFilter
	done   bool
}

// NewEmployeeReader starts reading after the employee id in checkpoint, or
// from the beginning when checkpoint is empty.
func NewEmployeeReader(repo employee.EmployeeRepository, rc payroll.RunContext, chunkSize int, checkpoint string) *EmployeeReader {
	return &EmployeeReader{
		repo: repo,
		filter: employee.EligibilityFilter{
			SubsidiaryID: rc.SubsidiaryID(),
			PeriodStart:  rc.PeriodStart(),
			PeriodEnd:    rc.PeriodEnd(),
			AfterID:      checkpoint,
			Limit:        chunkSize,
		},
	}
}

// Read returns the next chunk, or an empty slice once every eligible
// employee has been read.
func (r *EmployeeReader) Read(ctx context.Context) ([]employee.Employee, error) {
	if r.done {
		return nil, nil
	}
	employees, err := r.repo.ListEligible(ctx, r.filter)
	if err != nil {
		return nil, fmt.Errorf("failed to read eligible employees: %w", err)
	}
	if len(employees) < r.filter.Limit {
		r.done = true
	}
	if len(employees) > 0 {
		r.filter.AfterID = employees[len(employees)-1].ID
	}
	return employees, nil
}

// Position is the id of the last employee handed out.
func (r *EmployeeReader) Position() string {
	return r.filter.AfterID
}
