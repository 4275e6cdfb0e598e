package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/concept"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5/pgtype"
)

// SeedCatalog inserts the concepts whose code is not taken yet and the
// company settings when none exist. It returns the number of concepts added.
func SeedCatalog(ctx context.Context, db *database.DB, concepts []concept.Concept, settings payroll.CompanySettings) (int, error) {
	added := 0
	err := WithTransaction(ctx, db, func(ctx context.Context) error {
		q := GetQuerier(ctx, db)

		for _, c := range concepts {
			sourceType, ruleCode, inputs, err := encodeSource(c.Source)
			if err != nil {
				return fmt.Errorf("concept %s: %w", c.Code, err)
			}
			tag, err := q.Exec(ctx, `
				INSERT INTO concepts (code, name, category, default_value, calculation_priority,
					source_type, rule_code, input_codes, is_active)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
				ON CONFLICT (code) DO NOTHING
			`, c.Code, c.Name, c.Category.String(), c.DefaultValue, c.CalculationPriority, sourceType, ruleCode, inputs)
			if err != nil {
				return fmt.Errorf("failed to seed concept %s: %w", c.Code, err)
			}
			added += int(tag.RowsAffected())
		}

		_, err := q.Exec(ctx, `
			INSERT INTO company_settings (overtime_rate, overtime_second_rate, overtime_first_band_hours,
				rest_day_overtime_rate, standard_daily_hours, month_calculation_days, night_shift_start, night_shift_end)
			SELECT $1, $2, $3, $4, $5, $6, $7, $8
			WHERE NOT EXISTS (SELECT 1 FROM company_settings)
		`,
			settings.OvertimeRate, settings.OvertimeSecondRate, settings.OvertimeFirstBandHours,
			settings.RestDayOvertimeRate, settings.StandardDailyHours, settings.MonthCalculationDays,
			pgtype.Time{Microseconds: settings.NightShiftStart.Microseconds(), Valid: true},
			pgtype.Time{Microseconds: settings.NightShiftEnd.Microseconds(), Valid: true},
		)
		if err != nil {
			return fmt.Errorf("failed to seed company settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func encodeSource(source concept.ValueSource) (string, *string, []string, error) {
	switch s := source.(type) {
	case concept.FixedAssignment:
		return sourceFixed, nil, []string{}, nil
	case concept.DerivedFromPriorTotals:
		rule := string(s.Rule)
		inputs := s.Inputs
		if inputs == nil {
			inputs = []string{}
		}
		return sourceDerived, &rule, inputs, nil
	}
	return "", nil, nil, fmt.Errorf("%w: %T", concept.ErrUnknownRule, source)
}
