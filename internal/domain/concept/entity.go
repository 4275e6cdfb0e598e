package concept

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the closed set of concept categories.
type Category int

const (
	CategoryIncome Category = iota + 1
	CategoryDeduction
	CategoryEmployerContribution
)

func (c Category) String() string {
	switch c {
	case CategoryIncome:
		return "INCOME"
	case CategoryDeduction:
		return "DEDUCTION"
	case CategoryEmployerContribution:
		return "EMPLOYER_CONTRIBUTION"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// ParseCategory maps the stored category code onto Category.
func ParseCategory(code string) (Category, error) {
	switch code {
	case "INCOME":
		return CategoryIncome, nil
	case "DEDUCTION":
		return CategoryDeduction, nil
	case "EMPLOYER_CONTRIBUTION":
		return CategoryEmployerContribution, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, code)
}

// RuleCode names a derived calculation rule.
type RuleCode string

const (
	RuleProratedSalary  RuleCode = "PRORATED_SALARY"
	RuleOvertime        RuleCode = "OVERTIME"
	RuleNightSurcharge  RuleCode = "NIGHT_SURCHARGE"
	RulePercentOfGross  RuleCode = "PERCENT_OF_GROSS"
	RulePercentOfInputs RuleCode = "PERCENT_OF_INPUTS"
	RulePercentOfNet    RuleCode = "PERCENT_OF_NET"
)

// ValueSource says where a concept's amount comes from. It is implemented
// only by FixedAssignment and DerivedFromPriorTotals.
type ValueSource interface {
	valueSource()
}

// FixedAssignment uses the value pinned on the payroll assignment as is.
type FixedAssignment struct{}

// DerivedFromPriorTotals computes the amount with Rule, reading the listed
// input concepts (and, for aggregate rules, category totals) evaluated earlier.
type DerivedFromPriorTotals struct {
	Rule   RuleCode
	Inputs []string
}

func (FixedAssignment) valueSource()        {}
func (DerivedFromPriorTotals) valueSource() {}

// Concept is a catalog pay rule.
type Concept struct {
	ID                  string
	Code                string
	Name                string
	Category            Category
	DefaultValue        decimal.Decimal
	CalculationPriority int
	Source              ValueSource
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Assignment is the value of a Concept pinned to one payroll when the
// payroll was configured.
type Assignment struct {
	ID        string
	PayrollID string
	ConceptID string
	Value     decimal.Decimal
	CreatedAt time.Time

	// Joined fields
	Concept Concept
}

// PlanItem is one flattened step of a run's evaluation plan.
type PlanItem struct {
	Code     string
	Name     string
	Value    decimal.Decimal
	Category Category
	Priority int
	Source   ValueSource
}

func (c Category) MarshalText() ([]byte, error) {
	switch c {
	case CategoryIncome, CategoryDeduction, CategoryEmployerContribution:
		return []byte(c.String()), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
