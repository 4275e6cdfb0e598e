package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/concept"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// Stored values of concepts.source_type.
const (
	sourceFixed   = "FIXED"
	sourceDerived = "DERIVED"
)

type conceptRepository struct {
	db *database.DB
}

func NewConceptRepository(db *database.DB) concept.ConceptRepository {
	return &conceptRepository{db: db}
}

func (r *conceptRepository) GetAssignmentsByPayrollID(ctx context.Context, payrollID string) ([]concept.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.id, a.payroll_id, a.concept_id, a.value, a.created_at,
			   c.id, c.code, c.name, c.category, c.default_value, c.calculation_priority,
			   c.source_type, c.rule_code, c.input_codes, c.is_active, c.created_at, c.updated_at
		FROM payroll_concept_assignments a
		JOIN concepts c ON c.id = a.concept_id
		WHERE a.payroll_id = $1
	`

	rows, err := q.Query(ctx, query, payrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get concept assignments: %w", err)
	}
	defer rows.Close()

	var assignments []concept.Assignment
	for rows.Next() {
		var a concept.Assignment
		c, err := scanConcept(rows, &a.ID, &a.PayrollID, &a.ConceptID, &a.Value, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		a.Concept = c
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

func (r *conceptRepository) GetByCode(ctx context.Context, code string) (concept.Concept, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT c.id, c.code, c.name, c.category, c.default_value, c.calculation_priority,
			   c.source_type, c.rule_code, c.input_codes, c.is_active, c.created_at, c.updated_at
		FROM concepts c
		WHERE c.code = $1
	`

	c, err := scanConcept(q.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return concept.Concept{}, concept.ErrConceptNotFound
		}
		return concept.Concept{}, fmt.Errorf("failed to get concept: %w", err)
	}

	return c, nil
}

// scanConcept scans the concept columns after any leading destinations and
// decodes the stored category and value source.
func scanConcept(row pgx.Row, leading ...any) (concept.Concept, error) {
	var c concept.Concept
	var category, sourceType string
	var ruleCode *string
	var inputs []string

	dest := append(leading,
		&c.ID, &c.Code, &c.Name, &category, &c.DefaultValue, &c.CalculationPriority,
		&sourceType, &ruleCode, &inputs, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return concept.Concept{}, err
	}

	var err error
	if c.Category, err = concept.ParseCategory(category); err != nil {
		return concept.Concept{}, fmt.Errorf("concept %s: %w", c.Code, err)
	}
	if c.Source, err = parseSource(sourceType, ruleCode, inputs); err != nil {
		return concept.Concept{}, fmt.Errorf("concept %s: %w", c.Code, err)
	}

	return c, nil
}

func parseSource(sourceType string, ruleCode *string, inputs []string) (concept.ValueSource, error) {
	switch sourceType {
	case sourceFixed:
		return concept.FixedAssignment{}, nil
	case sourceDerived:
		if ruleCode == nil || *ruleCode == "" {
			return nil, fmt.Errorf("%w: derived concept without rule code", concept.ErrUnknownRule)
		}
		return concept.DerivedFromPriorTotals{Rule: concept.RuleCode(*ruleCode), Inputs: inputs}, nil
	}
	return nil, fmt.Errorf("%w: source type %q", concept.ErrUnknownRule, sourceType)
}
