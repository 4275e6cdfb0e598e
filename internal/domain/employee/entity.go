package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the read-only view of an employee consumed by the payroll
// pipeline. Employee records are owned by the HR subsystem.
type Employee struct {
	ID               string
	SubsidiaryID     string
	EmployeeCode     string
	FullName         string
	DocumentNumber   string
	PositionName     *string
	HireDate         time.Time
	CessationDate    *time.Time
	EmploymentStatus EmploymentStatus
	BankName         *string
	BankAccount      *string
	BaseSalary       *decimal.Decimal
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// EmployedDuring reports whether the employment overlaps [from, to].
func (e Employee) EmployedDuring(from, to time.Time) bool {
	if e.HireDate.After(to) {
		return false
	}
	if e.CessationDate != nil && e.CessationDate.Before(from) {
		return false
	}
	return true
}
