package main

import (
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/spf13/cobra"
)

func newCalculateCmd() *cobra.Command {
	var (
		payrollID string
		payslips  bool
	)

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate every employee of a payroll and aggregate its totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			start := time.Now()
			req := payroll.RunPayrollRequest{PayrollID: payrollID}
			res, err := a.PayrollService.Calculate(ctx, req)
			if err != nil {
				return err
			}
			result := map[string]any{"calculation": res}

			if payslips {
				slips, err := a.PayslipService.Generate(ctx, req)
				if err != nil {
					return err
				}
				result["payslips"] = slips
			}

			return writeJSON(cmd.OutOrStdout(), commandOutput{
				Command:    "calculate",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     result,
			})
		},
	}

	cmd.Flags().StringVar(&payrollID, "payroll", "", "Payroll UUID (required)")
	cmd.Flags().BoolVar(&payslips, "payslips", false, "Generate payslips after a successful calculation")
	_ = cmd.MarkFlagRequired("payroll")
	return cmd
}
