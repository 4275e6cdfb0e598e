package concept

import "context"

type ConceptRepository interface {
	// GetAssignmentsByPayrollID returns the payroll's pinned assignments joined
	// with their concepts, in no particular order.
	GetAssignmentsByPayrollID(ctx context.Context, payrollID string) ([]Assignment, error)
	GetByCode(ctx context.Context, code string) (Concept, error)
}
