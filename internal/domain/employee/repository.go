package employee

import (
	"context"
	"time"
)

// EligibilityFilter selects the employees of one subsidiary employed at any
// point of a period. AfterID is the exclusive keyset cursor.
type EligibilityFilter struct {
	SubsidiaryID string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	AfterID      string
	Limit        int
}

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByIDs(ctx context.Context, ids []string) ([]Employee, error)
	// ListEligible returns at most Limit employees ordered by id ascending
	// whose id is greater than AfterID.
	ListEligible(ctx context.Context, filter EligibilityFilter) ([]Employee, error)
}
