package payroll

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/concept"
)

// BuildPlan flattens the payroll's assignments into evaluation order:
// ascending priority, ties broken by code.
func BuildPlan(assignments []concept.Assignment) []concept.PlanItem {
	plan := make([]concept.PlanItem, 0, len(assignments))
	for _, a := range assignments {
		plan = append(plan, concept.PlanItem{
			Code:     a.Concept.Code,
			Name:     a.Concept.Name,
			Value:    a.Value,
			Category: a.Concept.Category,
			Priority: a.Concept.CalculationPriority,
			Source:   a.Concept.Source,
		})
	}
	sort.SliceStable(plan, func(i, j int) bool {
		if plan[i].Priority != plan[j].Priority {
			return plan[i].Priority < plan[j].Priority
		}
		return plan[i].Code < plan[j].Code
	})
	return plan
}

// ValidatePlan checks that every concept only reads concepts evaluated
// strictly before it. All violations are returned joined.
func ValidatePlan(plan []concept.PlanItem, rules RuleSet) error {
	byCode := make(map[string]concept.PlanItem, len(plan))
	var errs []error

	for _, item := range plan {
		if _, dup := byCode[item.Code]; dup {
			errs = append(errs, fmt.Errorf("%w: %s", concept.ErrDuplicateConceptCode, item.Code))
			continue
		}
		byCode[item.Code] = item
	}

	for _, item := range plan {
		switch src := item.Source.(type) {
		case concept.FixedAssignment:
		case concept.DerivedFromPriorTotals:
			spec, ok := rules[src.Rule]
			if !ok {
				errs = append(errs, fmt.Errorf("%w: %s uses %q", concept.ErrUnknownRule, item.Code, src.Rule))
				continue
			}
			if spec.RequiresInputs && len(src.Inputs) == 0 {
				errs = append(errs, fmt.Errorf("%w: %s lists no inputs for %s", concept.ErrConceptDependencyOrder, item.Code, src.Rule))
			}
			for _, code := range src.Inputs {
				input, ok := byCode[code]
				if !ok {
					errs = append(errs, fmt.Errorf("%w: %s reads %s which is not assigned to the payroll",
						concept.ErrConceptDependencyOrder, item.Code, code))
					continue
				}
				if input.Priority >= item.Priority {
					errs = append(errs, fmt.Errorf("%w: %s (priority %d) reads %s (priority %d)",
						concept.ErrConceptDependencyOrder, item.Code, item.Priority, code, input.Priority))
				}
			}
			for _, category := range spec.Reads {
				for _, other := range plan {
					if other.Code == item.Code || other.Category != category {
						continue
					}
					if other.Priority >= item.Priority {
						errs = append(errs, fmt.Errorf("%w: %s (priority %d) totals %s but %s has priority %d",
							concept.ErrConceptDependencyOrder, item.Code, item.Priority, category, other.Code, other.Priority))
					}
				}
			}
		default:
			errs = append(errs, fmt.Errorf("%w: %s has no value source", concept.ErrUnknownRule, item.Code))
		}
	}

	return errors.Join(errs...)
}
