package main

import (
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/concept"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/spf13/cobra"
)

type planStep struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Priority int      `json:"priority"`
	Value    string   `json:"value"`
	Rule     string   `json:"rule,omitempty"`
	Inputs   []string `json:"inputs,omitempty"`
}

type catalogReport struct {
	PayrollID   string     `json:"payroll_id"`
	PeriodStart string     `json:"period_start"`
	PeriodEnd   string     `json:"period_end"`
	WorkingDays int        `json:"working_days"`
	Plan        []planStep `json:"plan"`
}

func newValidateCatalogCmd() *cobra.Command {
	var payrollID string

	cmd := &cobra.Command{
		Use:   "validate-catalog",
		Short: "Build a payroll's run context and print its evaluation plan without calculating",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := payroll.RunPayrollRequest{PayrollID: payrollID}
			if err := req.Validate(); err != nil {
				return err
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			start := time.Now()
			rc, err := a.Builder.Build(cmd.Context(), payrollID)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), commandOutput{
				Command:    "validate-catalog",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     newCatalogReport(rc),
			})
		},
	}

	cmd.Flags().StringVar(&payrollID, "payroll", "", "Payroll UUID (required)")
	_ = cmd.MarkFlagRequired("payroll")
	return cmd
}

func newCatalogReport(rc payroll.RunContext) catalogReport {
	report := catalogReport{
		PayrollID:   rc.PayrollID(),
		PeriodStart: payroll.DateKey(rc.PeriodStart()),
		PeriodEnd:   payroll.DateKey(rc.PeriodEnd()),
		WorkingDays: rc.WorkingDayCount(),
	}
	for _, item := range rc.Plan() {
		step := planStep{
			Code:     item.Code,
			Name:     item.Name,
			Category: item.Category.String(),
			Priority: item.Priority,
			Value:    item.Value.String(),
		}
		if d, ok := item.Source.(concept.DerivedFromPriorTotals); ok {
			step.Rule = string(d.Rule)
			step.Inputs = d.Inputs
		}
		report.Plan = append(report.Plan, step)
	}
	return report
}
