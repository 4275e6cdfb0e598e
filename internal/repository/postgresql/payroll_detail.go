package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type detailRepository struct {
	db *database.DB
}

func NewDetailRepository(db *database.DB) payroll.DetailRepository {
	return &detailRepository{db: db}
}

const upsertDetailQuery = `
	INSERT INTO payroll_details (
		payroll_id, employee_id, concept_results, day_breakdown,
		worked_days, normal_minutes, overtime_25_minutes, overtime_35_minutes,
		overtime_100_minutes, night_minutes,
		total_income, total_deductions, total_employer_contributions, net_pay,
		execution_id
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (payroll_id, employee_id) DO UPDATE SET
		execution_id = EXCLUDED.execution_id,
		concept_results = EXCLUDED.concept_results,
		day_breakdown = EXCLUDED.day_breakdown,
		worked_days = EXCLUDED.worked_days,
		normal_minutes = EXCLUDED.normal_minutes,
		overtime_25_minutes = EXCLUDED.overtime_25_minutes,
		overtime_35_minutes = EXCLUDED.overtime_35_minutes,
		overtime_100_minutes = EXCLUDED.overtime_100_minutes,
		night_minutes = EXCLUDED.night_minutes,
		total_income = EXCLUDED.total_income,
		total_deductions = EXCLUDED.total_deductions,
		total_employer_contributions = EXCLUDED.total_employer_contributions,
		net_pay = EXCLUDED.net_pay,
		updated_at = NOW()
	WHERE payroll_details.payslip_url IS NULL
`

// UpsertBatch sends every detail in one round trip. Rows that already carry
// a payslip are left untouched and not counted.
func (r *detailRepository) UpsertBatch(ctx context.Context, details []payroll.PayrollDetail) (int, error) {
	if len(details) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	batch := &pgx.Batch{}
	for _, d := range details {
		results, err := json.Marshal(d.ConceptResults)
		if err != nil {
			return 0, fmt.Errorf("failed to encode concept results: %w", err)
		}
		days, err := json.Marshal(d.DayBreakdown)
		if err != nil {
			return 0, fmt.Errorf("failed to encode day breakdown: %w", err)
		}
		batch.Queue(upsertDetailQuery,
			d.PayrollID, d.EmployeeID, results, days,
			d.Hours.WorkedDays, d.Hours.NormalMinutes, d.Hours.Overtime25Minutes, d.Hours.Overtime35Minutes,
			d.Hours.Overtime100Minutes, d.Hours.NightMinutes,
			d.TotalIncome, d.TotalDeductions, d.TotalEmployerContributions, d.NetPay,
			nullableUUID(d.ExecutionID),
		)
	}

	br := q.SendBatch(ctx, batch)
	written := 0
	for _, d := range details {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return 0, fmt.Errorf("failed to upsert payroll detail for employee %s: %w", d.EmployeeID, err)
		}
		written += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to upsert payroll details: %w", err)
	}

	return written, nil
}

func (r *detailRepository) CountWithPayslip(ctx context.Context, payrollID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var n int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM payroll_details WHERE payroll_id = $1 AND payslip_url IS NOT NULL`,
		payrollID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count payslips: %w", err)
	}

	return n, nil
}

func (r *detailRepository) ListWithoutPayslip(ctx context.Context, payrollID string) ([]payroll.PayrollDetail, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT d.id, d.payroll_id, d.employee_id, d.concept_results, d.day_breakdown,
			   d.worked_days, d.normal_minutes, d.overtime_25_minutes, d.overtime_35_minutes,
			   d.overtime_100_minutes, d.night_minutes,
			   d.total_income, d.total_deductions, d.total_employer_contributions, d.net_pay,
			   d.payslip_url, d.payslip_generated_at, d.created_at, d.updated_at,
			   COALESCE(d.execution_id::text, ''), e.employee_code, e.full_name
		FROM payroll_details d
		LEFT JOIN employees e ON e.id = d.employee_id
		WHERE d.payroll_id = $1 AND d.payslip_url IS NULL
		ORDER BY d.employee_id
	`

	rows, err := q.Query(ctx, query, payrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll details: %w", err)
	}
	defer rows.Close()

	var details []payroll.PayrollDetail
	for rows.Next() {
		var d payroll.PayrollDetail
		var results, days []byte
		if err := rows.Scan(
			&d.ID, &d.PayrollID, &d.EmployeeID, &results, &days,
			&d.Hours.WorkedDays, &d.Hours.NormalMinutes, &d.Hours.Overtime25Minutes, &d.Hours.Overtime35Minutes,
			&d.Hours.Overtime100Minutes, &d.Hours.NightMinutes,
			&d.TotalIncome, &d.TotalDeductions, &d.TotalEmployerContributions, &d.NetPay,
			&d.PayslipURL, &d.PayslipGeneratedAt, &d.CreatedAt, &d.UpdatedAt,
			&d.ExecutionID, &d.EmployeeCode, &d.EmployeeName,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(results, &d.ConceptResults); err != nil {
			return nil, fmt.Errorf("failed to decode concept results of detail %s: %w", d.ID, err)
		}
		if err := json.Unmarshal(days, &d.DayBreakdown); err != nil {
			return nil, fmt.Errorf("failed to decode day breakdown of detail %s: %w", d.ID, err)
		}
		details = append(details, d)
	}

	return details, rows.Err()
}

func (r *detailRepository) SetPayslipURL(ctx context.Context, detailID string, url string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_details
		SET payslip_url = $2, payslip_generated_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND payslip_url IS NULL
	`, detailID, url)
	if err != nil {
		return fmt.Errorf("failed to set payslip url: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM payroll_details WHERE id = $1)`, detailID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check payroll detail: %w", err)
	}
	if exists {
		return payroll.ErrPayslipAlreadyStored
	}
	return payroll.ErrPayrollDetailNotFound
}

func (r *detailRepository) DeleteForEmployees(ctx context.Context, payrollID string, employeeIDs []string) (int, error) {
	if len(employeeIDs) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		DELETE FROM payroll_details
		WHERE payroll_id = $1 AND employee_id = ANY($2::uuid[]) AND payslip_url IS NULL
	`, payrollID, employeeIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete payroll details: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (r *detailRepository) DeleteStale(ctx context.Context, payrollID string, executionID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		DELETE FROM payroll_details
		WHERE payroll_id = $1
		  AND execution_id IS DISTINCT FROM $2::uuid
		  AND payslip_url IS NULL
	`, payrollID, executionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale payroll details: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func nullableUUID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
