package payroll

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/calendar"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/concept"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
)

// ContextBuilder assembles the RunContext shared by every employee of a run.
// Any error it returns is fatal to the run.
type ContextBuilder struct {
	payrollRepo payroll.PayrollRepository
	conceptRepo concept.ConceptRepository
	calendarSvc calendar.CalendarService
	rules       RuleSet
}

func NewContextBuilder(
	payrollRepo payroll.PayrollRepository,
	conceptRepo concept.ConceptRepository,
	calendarSvc calendar.CalendarService,
	rules RuleSet,
) *ContextBuilder {
	return &ContextBuilder{
		payrollRepo: payrollRepo,
		conceptRepo: conceptRepo,
		calendarSvc: calendarSvc,
		rules:       rules,
	}
}

func (b *ContextBuilder) Build(ctx context.Context, payrollID string) (payroll.RunContext, error) {
	p, err := b.payrollRepo.GetByID(ctx, payrollID)
	if err != nil {
		return payroll.RunContext{}, fmt.Errorf("failed to load payroll: %w", err)
	}
	if p.PeriodEnd.Before(p.PeriodStart) {
		return payroll.RunContext{}, fmt.Errorf("%w: %s ends before it starts", payroll.ErrInvalidPeriod, p.Code)
	}

	workingDays, err := b.calendarSvc.WorkingDays(ctx, p.PeriodStart, p.PeriodEnd)
	if err != nil {
		return payroll.RunContext{}, fmt.Errorf("failed to resolve working days: %w", err)
	}

	settings, err := b.payrollRepo.GetCompanySettings(ctx)
	if err != nil {
		return payroll.RunContext{}, fmt.Errorf("failed to load company settings: %w", err)
	}
	if settings.MonthCalculationDays <= 0 || !settings.StandardDailyHours.IsPositive() {
		return payroll.RunContext{}, fmt.Errorf("%w: month days and daily hours must be positive", payroll.ErrInvalidCompanySettings)
	}

	assignments, err := b.conceptRepo.GetAssignmentsByPayrollID(ctx, payrollID)
	if err != nil {
		return payroll.RunContext{}, fmt.Errorf("failed to load concept assignments: %w", err)
	}
	plan := BuildPlan(assignments)
	if err := ValidatePlan(plan, b.rules); err != nil {
		return payroll.RunContext{}, err
	}

	return payroll.NewRunContext(payroll.RunContextParams{
		PayrollID:    p.ID,
		SubsidiaryID: p.SubsidiaryID,
		PeriodStart:  p.PeriodStart,
		PeriodEnd:    p.PeriodEnd,
		WorkingDays:  workingDays,
		Settings:     settings,
		Plan:         plan,
	}), nil
}
