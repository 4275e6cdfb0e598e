package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	e.id, e.subsidiary_id, e.employee_code, e.full_name, e.nik, p.name,
	e.hire_date, e.resignation_date, e.employment_status,
	e.bank_name, e.bank_account_number, e.base_salary
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.SubsidiaryID, &emp.EmployeeCode, &emp.FullName, &emp.DocumentNumber, &emp.PositionName,
		&emp.HireDate, &emp.CessationDate, &emp.EmploymentStatus,
		&emp.BankName, &emp.BankAccount, &emp.BaseSalary,
	)
	return emp, err
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees e
		LEFT JOIN positions p ON p.id = e.position_id
		WHERE e.id = $1 AND e.deleted_at IS NULL
	`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id %s: %w", id, err)
	}

	return emp, nil
}

// GetByIDs implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees e
		LEFT JOIN positions p ON p.id = e.position_id
		WHERE e.id = ANY($1::uuid[])
		ORDER BY e.id
	`

	return e.list(ctx, q, query, ids)
}

// ListEligible implements employee.EmployeeRepository. Paging is keyset on id
// so a resumed run sees the same order.
func (e *employeeRepositoryImpl) ListEligible(ctx context.Context, filter employee.EligibilityFilter) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees e
		LEFT JOIN positions p ON p.id = e.position_id
		WHERE e.subsidiary_id = $1
		  AND e.deleted_at IS NULL
		  AND e.hire_date <= $3
		  AND (e.resignation_date IS NULL OR e.resignation_date >= $2)
		  AND ($4::uuid IS NULL OR e.id > $4::uuid)
		ORDER BY e.id
		LIMIT $5
	`

	var afterID *string
	if filter.AfterID != "" {
		afterID = &filter.AfterID
	}

	return e.list(ctx, q, query, filter.SubsidiaryID, filter.PeriodStart, filter.PeriodEnd, afterID, filter.Limit)
}

func (e *employeeRepositoryImpl) list(ctx context.Context, q database.Querier, query string, args ...any) ([]employee.Employee, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}

	return employees, rows.Err()
}
