package concept

import "errors"

var (
	ErrConceptNotFound             = errors.New("concept not found")
	ErrUnknownCategory             = errors.New("unknown concept category")
	ErrUnknownRule                 = errors.New("unknown concept rule")
	ErrDuplicateConceptCode        = errors.New("duplicate concept code in payroll plan")
	ErrConceptDependencyOrder      = errors.New("concept depends on a concept that is not evaluated before it")
	ErrUnresolvedConceptDependency = errors.New("concept dependency could not be resolved")
)
