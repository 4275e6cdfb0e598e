package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

func (r *payrollRepository) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, code, subsidiary_id, period_start, period_end, status,
			   employee_count, total_income, total_deductions, total_net,
			   base_payroll_id, corrected_payroll_id, calculated_at, approved_by, approved_at,
			   created_at, updated_at
		FROM payrolls
		WHERE id = $1
	`

	var p payroll.Payroll
	err := q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Code, &p.SubsidiaryID, &p.PeriodStart, &p.PeriodEnd, &p.Status,
		&p.Totals.EmployeeCount, &p.Totals.TotalIncome, &p.Totals.TotalDeductions, &p.Totals.TotalNet,
		&p.BasePayrollID, &p.CorrectedPayrollID, &p.CalculatedAt, &p.ApprovedBy, &p.ApprovedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to get payroll: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) GetCompanySettings(ctx context.Context) (payroll.CompanySettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, overtime_rate, overtime_second_rate, overtime_first_band_hours,
			   rest_day_overtime_rate, standard_daily_hours, month_calculation_days,
			   night_shift_start, night_shift_end, updated_at
		FROM company_settings
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var s payroll.CompanySettings
	var nightStart, nightEnd pgtype.Time
	err := q.QueryRow(ctx, query).Scan(
		&s.ID, &s.OvertimeRate, &s.OvertimeSecondRate, &s.OvertimeFirstBandHours,
		&s.RestDayOvertimeRate, &s.StandardDailyHours, &s.MonthCalculationDays,
		&nightStart, &nightEnd, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.CompanySettings{}, payroll.ErrCompanySettingsNotFound
		}
		return payroll.CompanySettings{}, fmt.Errorf("failed to get company settings: %w", err)
	}
	s.NightShiftStart = time.Duration(nightStart.Microseconds) * time.Microsecond
	s.NightShiftEnd = time.Duration(nightEnd.Microseconds) * time.Microsecond

	return s, nil
}

func (r *payrollRepository) AggregateDetails(ctx context.Context, payrollID string) (payroll.Totals, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*),
			   COALESCE(SUM(total_income), 0),
			   COALESCE(SUM(total_deductions), 0),
			   COALESCE(SUM(net_pay), 0)
		FROM payroll_details
		WHERE payroll_id = $1
	`

	var t payroll.Totals
	err := q.QueryRow(ctx, query, payrollID).Scan(&t.EmployeeCount, &t.TotalIncome, &t.TotalDeductions, &t.TotalNet)
	if err != nil {
		return payroll.Totals{}, fmt.Errorf("failed to aggregate payroll details: %w", err)
	}

	return t, nil
}

func (r *payrollRepository) MarkCalculated(ctx context.Context, payrollID string, totals payroll.Totals) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payrolls
		SET status = $2,
			employee_count = $3,
			total_income = $4,
			total_deductions = $5,
			total_net = $6,
			calculated_at = NOW(),
			updated_at = NOW()
		WHERE id = $1 AND status IN ($7, $2)
	`

	tag, err := q.Exec(ctx, query,
		payrollID, payroll.PayrollStatusCalculated,
		totals.EmployeeCount, totals.TotalIncome, totals.TotalDeductions, totals.TotalNet,
		payroll.PayrollStatusDraft,
	)
	if err != nil {
		return fmt.Errorf("failed to mark payroll calculated: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotCalculable
	}

	return nil
}

func (r *payrollRepository) ListPendingPayslips(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT p.id
		FROM payrolls p
		JOIN payroll_details d ON d.payroll_id = p.id
		WHERE p.status IN ($1, $2, $3) AND d.payslip_url IS NULL
		ORDER BY p.id
	`

	rows, err := q.Query(ctx, query,
		payroll.PayrollStatusCalculated, payroll.PayrollStatusApproved, payroll.PayrollStatusPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls with pending payslips: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
